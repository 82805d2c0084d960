package constants

// Рабочие листы документа
const (
	SheetRules         = "Правила синхро"
	SheetOrder         = "Заказ"
	SheetLabels        = "Этикетки"
	SheetCertification = "Сертификация"
	SheetPriceDynamics = "Динамика цены"
	SheetPriceCalc     = "Расчет цены"
	SheetABC           = "ABC-Анализ"
	SheetNewCert       = "New sert"
	SheetPrimary       = "Главная"
	SheetPrice         = "Прайс"
)

var (
	// ArticleSheets - листы, в которых живет каждый артикул
	ArticleSheets = []string{
		SheetOrder,
		SheetLabels,
		SheetCertification,
		SheetPriceDynamics,
		SheetPriceCalc,
		SheetABC,
		SheetNewCert,
	}

	// SortTargetSheets - листы, которые перестраиваются группами
	SortTargetSheets = []string{
		SheetOrder,
		SheetPriceDynamics,
		SheetPriceCalc,
	}
)

// Колонки, участвующие в группировке
const (
	FieldID        = "ID"
	FieldIDP       = "ID-P"
	FieldIDG       = "ID-G"
	FieldIDL       = "ID-L"
	FieldLine      = "Линия"
	FieldGroup     = "Группа"
	FieldTitle     = "Название  ENG прайс произв"
	FieldDSName    = "Наименования рус по ДС"
	FieldGroupLine = "Группа линии"
	FieldLinePrice = "Линия Прайс"
)

// Колонки листа "Сертификация"
const (
	CertNameRU     = "Наименования рус по ДС"
	CertNameEN     = "Наименования англ по ДС"
	CertVolume     = "Объём"
	CertTNVED      = "Код ТН ВЭД"
	CertVolumeEN   = "Объём англ."
	CertDSName     = "Наименование ДС"
	CertInvoiceRU  = "Наименование для инвойса"
	CertInvoiceEN  = "Наименование для инвойса Англ"
	CertTNVEDLabel = "Код ТН ВЭД: "
	CertCodeLabel  = "Code: "
)

var (
	// CascadeTriggers - заголовки (в нижнем регистре), правка которых запускает пересчет
	CascadeTriggers = map[string]bool{
		"наименования рус по дс":  true,
		"наименования англ по дс": true,
		"объём":                   true,
		"код тн вэд":              true,
	}

	// VolumeReplacements - порядок важен: "шт. х" после "мл"/"гр"
	VolumeReplacements = [][2]string{
		{"мл", "ml"},
		{"гр", "g"},
		{"Тестер", "Tester"},
		{"шт. х", "*"},
	}
)

// Подписи групп
const (
	GroupUnassigned   = "UNASSIGNED"
	TitleUnassigned   = "Группа не идентифицирована"
	TitleUndetermined = "Группа не определена"
)

// Оформление строк-заголовков групп
const (
	ColorManufacturerBG = "#666666"
	ColorPriceBG        = "#7f6000"
	ColorGroupFont      = "#FFFFFF"
)

// Affirmative - значения флагов "включено"/"внешний" в листе правил
var Affirmative = map[string]bool{
	"true": true,
	"да":   true,
}
