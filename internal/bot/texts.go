package bot

// Static replies. Dynamic messages are rendered by the present package.

const welcomeText = `🏦 <b>Selamat datang di Bot Perhitunganku Enhanced!</b>
%s
✨ <b>Fitur Terbaru:</b>
📊 Progress bar visual untuk anggaran
💡 Smart tips berdasarkan pola pengeluaran Anda
📈 Chart ASCII untuk visualisasi data

🚀 <b>Bot ini membantu Anda:</b>
✅ Mencatat transaksi harian
✅ Mengatur anggaran bulanan
✅ Melihat laporan keuangan dengan visualisasi
✅ Export data ke Excel
✅ Mendapat tips cerdas untuk keuangan

<i>Pilih menu di bawah untuk memulai:</i>`

const registeredLine = "✨ Anda sudah didaftarkan untuk menerima notifikasi 📢\n"

const menuText = `🎛️ <b>Menu Utama Bot Perhitunganku Enhanced</b>

Pilih fitur yang ingin Anda gunakan:`

const menuCallbackText = `🎛️ <b>Menu Utama Bot Perhitunganku Enhanced</b>

✨ Dengan fitur visual terbaru untuk pengalaman yang lebih baik!

Pilih fitur yang ingin Anda gunakan:`

const helpText = `📚 <b>Bot Perhitunganku Enhanced</b>

✨ <b>Fitur Terbaru:</b>
• 📊 Progress bar visual untuk anggaran
• 💡 Smart tips berdasarkan pola pengeluaran
• 📈 Chart ASCII untuk visualisasi data
• 🎯 Status kesehatan anggaran real-time

📝 <b>Catat transaksi:</b>
<code>[keterangan] +/-[jumlah] /[kategori]</code>

<b>Contoh:</b>
<code>Makan -25000 /makanan</code>
<code>Gaji +3000000 /gaji</code>

💰 <b>Anggaran Enhanced:</b>
/set_anggaran [kategori] [jumlah]
/cek_anggaran [kategori] → dengan progress bar!
/list_anggaran → dashboard visual

📊 <b>Laporan Enhanced:</b>
/laporanhari | /laporanminggu | /laporanbulan
/rekapbulanan mm yyyy
/export → download Excel enhanced

🔔 <b>Notifikasi:</b>
/notif → lihat pengaturan
/notif pagi off → matikan pengingat pagi

💡 <b>Tip:</b> Gunakan /menu untuk navigasi yang lebih mudah!`

const helpGuideText = `📚 <b>Panduan Bot Perhitunganku Enhanced</b>

<b>📝 Format Catat Transaksi:</b>
<code>[keterangan] +/-[jumlah] /[kategori]</code>

<b>Contoh:</b>
• <code>Makan siang -25000 /makanan</code>
• <code>Gaji bulan ini +3000000 /gaji</code>
• <code>Beli buku -50000 /edukasi</code>

<b>💰 Anggaran:</b>
• <code>/set_anggaran makanan 500000</code>
• <code>/cek_anggaran makanan</code>
• <code>/list_anggaran</code>

<b>📊 Laporan Enhanced:</b>
• <code>/laporanhari</code> | <code>/laporanminggu</code> | <code>/laporanbulan</code>
• <code>/rekapbulanan 12 2024</code>

<b>📤 Export:</b>
• <code>/export</code> → bulan ini
• <code>/export tahun</code>
• <code>/export 01-01-2024 31-01-2024</code>

<b>✨ Fitur Baru:</b>
• Progress bar visual untuk anggaran
• Smart tips berdasarkan pola pengeluaran
• Chart ASCII untuk visualisasi data`

const transactionMenuText = `📝 <b>Menu Catat Transaksi</b>

💡 <b>Tips:</b> Bot akan memberikan feedback visual setelah Anda input transaksi!

Pilih jenis transaksi yang ingin dicatat:`

const budgetMenuText = `💰 <b>Menu Kelola Anggaran</b>

📊 <b>Fitur Terbaru:</b> Progress bar visual untuk monitoring anggaran real-time!

Kelola anggaran bulanan Anda:`

const reportMenuText = `📊 <b>Menu Lihat Laporan</b>

🎯 <b>Enhanced Features:</b>
• Progress bar untuk setiap kategori
• Chart ASCII untuk visualisasi
• Smart tips berdasarkan data Anda

Pilih periode laporan yang ingin dilihat:`

const exportMenuText = `📤 <b>Menu Export Data</b>

Export data Anda ke file Excel:`

const expenseGuideText = `💸 <b>Panduan Catat Pengeluaran</b>

<b>Format:</b>
<code>[keterangan] -[jumlah] /[kategori]</code>

<b>Contoh yang benar:</b>
• <code>Makan siang -25000 /makanan</code>
• <code>Bensin motor -20000 /transport</code>
• <code>Beli baju -150000 /pakaian</code>
• <code>Bayar listrik -200000 /utilitas</code>

💡 <b>Tips:</b> Gunakan kategori yang konsisten agar laporan lebih akurat!

🎯 <b>Fitur Baru:</b> Setelah input, bot akan menampilkan progress anggaran kategori secara otomatis!`

const incomeGuideText = `💰 <b>Panduan Catat Pemasukan</b>

<b>Format:</b>
<code>[keterangan] +[jumlah] /[kategori]</code>

<b>Contoh yang benar:</b>
• <code>Gaji bulanan +3000000 /gaji</code>
• <code>Freelance design +500000 /freelance</code>
• <code>Bonus kinerja +1000000 /bonus</code>
• <code>Jual barang bekas +200000 /lainnya</code>

💡 <b>Tips:</b> Catat semua sumber pemasukan untuk tracking yang lengkap!`

const formatGuideText = `📋 <b>Format Input Transaksi</b>

<b>Struktur Umum:</b>
<code>[Deskripsi] [+/-][Nominal] /[Kategori]</code>

<b>✅ Yang BENAR:</b>
• <code>Makan siang -25000 /makanan</code>
• <code>Gaji +3000000 /gaji</code>
• <code>Transport ojol -15000 /transport</code>

<b>❌ Yang SALAH:</b>
• <code>Makan siang 25000 makanan</code> (tanpa +/- dan /)
• <code>-25000 /makanan</code> (tanpa deskripsi)
• <code>Makan siang -25000</code> (tanpa kategori)

<b>📝 Multiple Transaksi:</b>
Bisa input beberapa sekaligus, pisah dengan enter:
<code>Sarapan -10000 /makanan
Transport -5000 /transport
Freelance +200000 /freelance</code>`

const setBudgetGuideText = `🎯 <b>Panduan Set Anggaran</b>

<b>Format:</b>
<code>/set_anggaran [kategori] [jumlah]</code>

<b>Contoh:</b>
• <code>/set_anggaran makanan 1000000</code>
• <code>/set_anggaran transport 300000</code>
• <code>/set_anggaran hiburan 200000</code>

💡 <b>Tips Anggaran yang Baik:</b>
• 50% untuk kebutuhan (needs)
• 30% untuk keinginan (wants)
• 20% untuk tabungan (savings)

🎯 <b>Fitur Baru:</b> Setelah set anggaran, gunakan <code>/cek_anggaran</code> untuk melihat progress bar visual!

Ketik perintah langsung di chat untuk mengatur anggaran!`

const checkBudgetGuideText = `💰 <b>Panduan Cek Anggaran</b>

<b>Format:</b>
<code>/cek_anggaran [kategori]</code>

<b>Contoh:</b>
• <code>/cek_anggaran makanan</code>
• <code>/cek_anggaran transport</code>
• <code>/cek_anggaran hiburan</code>

<b>📊 Info yang ditampilkan (ENHANCED):</b>
✅ Progress bar visual dengan emoji status
✅ Total anggaran yang diset
✅ Jumlah yang sudah terpakai
✅ Sisa anggaran
✅ Persentase penggunaan
✅ Status kesehatan anggaran
✅ Smart tips berdasarkan kondisi

Ketik perintah langsung di chat untuk cek anggaran!`

const customReportGuideText = `📊 <b>Panduan Laporan Custom Enhanced</b>

<b>Format untuk periode tertentu:</b>
<code>/rekapbulanan [bulan] [tahun]</code>

<b>Contoh:</b>
• <code>/rekapbulanan 12 2024</code> → Desember 2024
• <code>/rekapbulanan 1 2025</code> → Januari 2025

<b>🎯 Laporan Enhanced berisi:</b>
✅ Progress bar untuk setiap kategori
✅ Chart ASCII untuk visualisasi pengeluaran
✅ Total pemasukan &amp; pengeluaran dengan emoji status
✅ Smart tips berdasarkan pola pengeluaran Anda
✅ Breakdown per kategori dengan mini progress bar
✅ Perbandingan dengan anggaran
✅ Daftar transaksi terbaru

Ketik perintah langsung di chat!`

const customExportGuideText = `📤 <b>Panduan Export Custom</b>

<b>Format:</b>
<code>/export [tanggal_mulai] [tanggal_selesai]</code>

<b>Contoh:</b>
• <code>/export 01-01-2024 31-01-2024</code>
• <code>/export 15-12-2024 15-01-2025</code>

<b>Format tanggal:</b> dd-mm-yyyy

<b>📋 File Excel berisi:</b>
• Sheet Transaksi (semua transaksi)
• Sheet Anggaran (data anggaran)
• Sheet Dashboard (ringkasan &amp; analisis enhanced)

Ketik perintah langsung di chat!`

const exportUsageText = `❌ Format salah.

📝 <b>Gunakan:</b>
• /export → bulan ini
• /export tahun
• /export dd-mm-YYYY dd-mm-YYYY`

const setBudgetUsageText = `❌ <b>Format salah!</b>

📝 <b>Format yang benar:</b>
<code>/set_anggaran [kategori] [jumlah]</code>

<b>Contoh:</b>
• <code>/set_anggaran makanan 500000</code>
• <code>/set_anggaran transport 300000</code>
• <code>/set_anggaran hiburan 200000</code>

💡 <b>Tips Anggaran Sehat:</b>
• 50% untuk kebutuhan (makanan, transport, tagihan)
• 30% untuk keinginan (hiburan, shopping)
• 20% untuk tabungan dan investasi`

const checkBudgetUsageText = `❌ <b>Format salah!</b>

📝 <b>Format yang benar:</b>
<code>/cek_anggaran [kategori]</code>

<b>Contoh:</b>
• <code>/cek_anggaran makanan</code>
• <code>/cek_anggaran transport</code>
• <code>/cek_anggaran hiburan</code>

💡 <b>Fitur Enhanced:</b>
✅ Progress bar visual
✅ Proyeksi pengeluaran
✅ Smart recommendations`

const recapUsageText = `❌ <b>Format salah!</b>

📝 <b>Format yang benar:</b>
<code>/rekapbulanan mm yyyy</code>

<b>Contoh:</b>
• <code>/rekapbulanan 12 2024</code> → Desember 2024
• <code>/rekapbulanan 1 2025</code> → Januari 2025

✨ <b>Fitur Enhanced meliputi:</b>
• Progress bar untuk setiap kategori anggaran
• Chart ASCII untuk visualisasi pengeluaran
• Smart tips berdasarkan pola keuangan Anda
• Status kesehatan keuangan dengan emoji`

const notifUsageText = `❌ <b>Format salah!</b>

📝 <b>Format yang benar:</b>
<code>/notif [jenis] on|off</code>

<b>Jenis:</b> semua, pagi, siang, malam, budget, mingguan

<b>Contoh:</b>
• <code>/notif pagi off</code>
• <code>/notif siang on</code>`

const broadcastUsageText = "📝 <b>Gunakan:</b> <code>/broadcast [pesan]</code>"

const (
	genericErrorText  = "❌ Terjadi kesalahan saat mengakses data. Coba lagi dalam beberapa saat."
	callbackErrorText = "❌ Terjadi kesalahan, coba lagi"
	notifDisabledText = "⚠️ Notification system tidak aktif."
	adminOnlyText     = "⛔ Perintah ini hanya untuk admin."
	rateLimitedText   = "⏳ Terlalu banyak pesan. Tunggu sebentar sebelum mengirim lagi."
	broadcastDoneText = "📢 Broadcast terkirim ke %d pengguna."
	morningSentText   = "✅ Morning reminder sudah dikirim!"
	eveningSentText   = "✅ Evening summary sudah dikirim!"
	budgetCheckedText = "✅ Budget alert dicek & dikirim jika ada alert."
	testFailedText    = "❌ Gagal kirim %s: %v"

	rateLimitedMessageText = "⏳ Terlalu banyak pesan. Pesan ini TIDAK diproses dan transaksi di dalamnya tidak tercatat. Kirim ulang dalam %d detik."
)
