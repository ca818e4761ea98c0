package seed

import "vgroup-backoffice/internal/database/models"

type place struct {
	Code      string
	Country   string
	NameTh    string
	NameLo    string
	NameEn    string
	Districts []placeName
}

type placeName struct {
	NameTh string
	NameLo string
	NameEn string
}

// Province codes follow ISO 3166-2.
var provinces = []place{
	{Code: "TH-10", Country: "TH", NameTh: "กรุงเทพมหานคร", NameEn: "Bangkok", Districts: []placeName{
		{NameTh: "ปทุมวัน", NameEn: "Pathum Wan"},
		{NameTh: "บางรัก", NameEn: "Bang Rak"},
		{NameTh: "จตุจักร", NameEn: "Chatuchak"},
	}},
	{Code: "TH-11", Country: "TH", NameTh: "สมุทรปราการ", NameEn: "Samut Prakan", Districts: []placeName{
		{NameTh: "เมืองสมุทรปราการ", NameEn: "Mueang Samut Prakan"},
		{NameTh: "บางพลี", NameEn: "Bang Phli"},
	}},
	{Code: "TH-20", Country: "TH", NameTh: "ชลบุรี", NameEn: "Chon Buri", Districts: []placeName{
		{NameTh: "เมืองชลบุรี", NameEn: "Mueang Chon Buri"},
		{NameTh: "ศรีราชา", NameEn: "Si Racha"},
		{NameTh: "บางละมุง", NameEn: "Bang Lamung"},
	}},
	{Code: "TH-21", Country: "TH", NameTh: "ระยอง", NameEn: "Rayong", Districts: []placeName{
		{NameTh: "เมืองระยอง", NameEn: "Mueang Rayong"},
		{NameTh: "ปลวกแดง", NameEn: "Pluak Daeng"},
	}},
	{Code: "TH-41", Country: "TH", NameTh: "อุดรธานี", NameEn: "Udon Thani", Districts: []placeName{
		{NameTh: "เมืองอุดรธานี", NameEn: "Mueang Udon Thani"},
		{NameTh: "กุมภวาปี", NameEn: "Kumphawapi"},
	}},
	{Code: "TH-43", Country: "TH", NameTh: "หนองคาย", NameEn: "Nong Khai", Districts: []placeName{
		{NameTh: "เมืองหนองคาย", NameEn: "Mueang Nong Khai"},
		{NameTh: "ท่าบ่อ", NameEn: "Tha Bo"},
	}},
	{Code: "TH-50", Country: "TH", NameTh: "เชียงใหม่", NameEn: "Chiang Mai", Districts: []placeName{
		{NameTh: "เมืองเชียงใหม่", NameEn: "Mueang Chiang Mai"},
		{NameTh: "สันทราย", NameEn: "San Sai"},
	}},
	{Code: "LA-VT", Country: "LA", NameTh: "นครหลวงเวียงจันทน์", NameLo: "ນະຄອນຫຼວງວຽງຈັນ", NameEn: "Vientiane Capital", Districts: []placeName{
		{NameLo: "ຈັນທະບູລີ", NameEn: "Chanthabuly"},
		{NameLo: "ສີໂຄດຕະບອງ", NameEn: "Sikhottabong"},
		{NameLo: "ໄຊເສດຖາ", NameEn: "Xaysetha"},
	}},
	{Code: "LA-SV", Country: "LA", NameTh: "สะหวันนะเขต", NameLo: "ສະຫວັນນະເຂດ", NameEn: "Savannakhet", Districts: []placeName{
		{NameLo: "ໄກສອນ ພົມວິຫານ", NameEn: "Kaysone Phomvihane"},
		{NameLo: "ອຸທຸມພອນ", NameEn: "Outhoumphone"},
	}},
	{Code: "LA-CH", Country: "LA", NameTh: "จำปาสัก", NameLo: "ຈຳປາສັກ", NameEn: "Champasak", Districts: []placeName{
		{NameLo: "ປາກເຊ", NameEn: "Pakse"},
		{NameLo: "ຈຳປາສັກ", NameEn: "Champasak"},
	}},
	{Code: "LA-LP", Country: "LA", NameTh: "หลวงพระบาง", NameLo: "ຫຼວງພະບາງ", NameEn: "Luang Prabang", Districts: []placeName{
		{NameLo: "ຫຼວງພະບາງ", NameEn: "Luang Prabang"},
		{NameLo: "ນານ", NameEn: "Nan"},
	}},
	{Code: "LA-KH", Country: "LA", NameTh: "คำม่วน", NameLo: "ຄຳມ່ວນ", NameEn: "Khammouane", Districts: []placeName{
		{NameLo: "ທ່າແຂກ", NameEn: "Thakhek"},
	}},
	{Code: "LA-BL", Country: "LA", NameTh: "บอลิคำไซ", NameLo: "ບໍລິຄຳໄຊ", NameEn: "Bolikhamxay", Districts: []placeName{
		{NameLo: "ປາກຊັນ", NameEn: "Paksan"},
	}},
}

type personName struct {
	En, Lo, Th string
}

var maleFirstNames = []personName{
	{"Somphone", "ສົມພອນ", "สมพร"},
	{"Bounmy", "ບຸນມີ", "บุญมี"},
	{"Khamphet", "ຄຳເພັດ", "คำเพชร"},
	{"Vilaysack", "ວິໄລສັກ", "วิไลศักดิ์"},
	{"Souksavanh", "ສຸກສະຫວັນ", "สุขสวรรค์"},
	{"Thongchanh", "ທອງຈັນ", "ทองจันทร์"},
}

var femaleFirstNames = []personName{
	{"Khamla", "ຄຳຫຼ້າ", "คำหล้า"},
	{"Noy", "ນ້ອຍ", "น้อย"},
	{"Phonesavanh", "ພອນສະຫວັນ", "พรสวรรค์"},
	{"Keo", "ແກ້ວ", "แก้ว"},
	{"Manivanh", "ມະນີວັນ", "มณีวรรณ"},
	{"Chanthala", "ຈັນທະລາ", "จันทะลา"},
}

var lastNames = []personName{
	{"Phommachanh", "ພົມມະຈັນ", "พรหมจันทร์"},
	{"Sisouphanh", "ສີສຸພັນ", "ศรีสุพรรณ"},
	{"Vongsa", "ວົງສາ", "วงศา"},
	{"Keomany", "ແກ້ວມະນີ", "แก้วมณี"},
	{"Inthavong", "ອິນທະວົງ", "อินทวงศ์"},
	{"Sayasane", "ໄຊຍະເສນ", "ไชยะเสน"},
}

var agentNames = []string{
	"Somsak Recruitment", "Pakse Labour Link", "Mekong Manpower",
	"Savan Job Center", "Vientiane Workforce Partners", "Champa Staffing",
}

type company struct {
	Name     string
	Industry string
	Province string
}

var companies = []company{
	{"Siam Precision Parts Co., Ltd.", "Manufacturing", "TH-21"},
	{"Eastern Seaboard Logistics Co., Ltd.", "Logistics", "TH-20"},
	{"Chonburi Foods Co., Ltd.", "Food Processing", "TH-20"},
	{"Bangkok Riverside Hotel Group", "Hospitality", "TH-10"},
	{"Lanna Agro Co., Ltd.", "Agriculture", "TH-50"},
	{"Samut Prakan Steel Works Co., Ltd.", "Construction", "TH-11"},
}

var positions = []Weighted[string]{
	{"Factory Worker", 40},
	{"Construction Worker", 20},
	{"Housekeeper", 12},
	{"Farm Worker", 12},
	{"Restaurant Staff", 10},
	{"Forklift Driver", 6},
}

var workerStatusWeights = []Weighted[models.WorkerStatus]{
	{models.WorkerNewLead, 12},
	{models.WorkerScreening, 10},
	{models.WorkerProcessing, 10},
	{models.WorkerAcademy, 8},
	{models.WorkerReady, 8},
	{models.WorkerDeployed, 14},
	{models.WorkerWorking, 28},
	{models.WorkerContractEnd, 6},
	{models.WorkerTerminated, 4},
}

var tierWeights = []Weighted[models.AgentTier]{
	{models.TierGold, 1},
	{models.TierSilver, 2},
	{models.TierBronze, 3},
}

var paymentMethods = []Weighted[models.PaymentMethod]{
	{models.PaymentPayrollDeduction, 60},
	{models.PaymentBankTransfer, 20},
	{models.PaymentMobileBanking, 15},
	{models.PaymentCash, 5},
}

var loanPurposes = []string{
	"Recruitment fee advance", "Passport and visa fees", "Travel to worksite", "Medical check-up", "Family emergency",
}

type sosTemplate struct {
	Category string
	Priority models.SosPriority
	Message  string
}

var sosTemplates = []Weighted[sosTemplate]{
	{sosTemplate{"SALARY", models.SosHigh, "Employer has not paid salary for two months"}, 5},
	{sosTemplate{"HEALTH", models.SosCritical, "Injured at work, needs transfer to hospital"}, 2},
	{sosTemplate{"HOUSING", models.SosMedium, "No running water in the dormitory"}, 4},
	{sosTemplate{"DOCUMENT", models.SosHigh, "Passport kept by the supervisor"}, 3},
	{sosTemplate{"WORKPLACE", models.SosLow, "Asking to change shift because of night study"}, 3},
}

var sosOutcomes = []Weighted[models.SosStatus]{
	{models.SosOpen, 3},
	{models.SosInProgress, 3},
	{models.SosResolved, 3},
	{models.SosClosed, 2},
}

var orderOutcomes = []Weighted[models.OrderStatus]{
	{models.OrderDraft, 2},
	{models.OrderQuoted, 2},
	{models.OrderApproved, 2},
	{models.OrderDeploying, 3},
	{models.OrderCompleted, 3},
	{models.OrderCancelled, 1},
}

var commissionOutcomes = []Weighted[models.CommissionStatus]{
	{models.CommissionPending, 4},
	{models.CommissionApproved, 3},
	{models.CommissionPaid, 5},
	{models.CommissionCancelled, 1},
}

var documentTypes = []string{"PASSPORT", "VISA", "WORK_PERMIT", "MEDICAL_CERT"}
