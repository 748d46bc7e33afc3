package types

// CareersSettings controls the careers page.
type CareersSettings struct {
	VacanciesEnabled     *bool    `json:"vacanciesEnabled" validate:"required"`
	AttractionTitle      string   `json:"attractionTitle" validate:"min=3,max=200"`
	AttractionText       string   `json:"attractionText" validate:"min=3,max=3000"`
	AttractionHighlights []string `json:"attractionHighlights" validate:"min=1,max=12,dive,min=2,max=180"`
}

// SiteSettings is the singular settings object.
type SiteSettings struct {
	Careers CareersSettings `json:"careers"`
}

// DefaultSiteSettings returns the settings used when storage is empty or corrupt.
// Each call returns a fresh copy.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		Careers: CareersSettings{
			VacanciesEnabled: Ptr(true),
			AttractionTitle:  "Присоединяйтесь к команде СтройНефтеГаз",
			AttractionText: "Мы формируем кадровый резерв для будущих производственных запусков. " +
				"Предлагаем конкурентный доход, прозрачные премиальные механики и долгосрочную занятость " +
				"на инфраструктурных проектах.",
			AttractionHighlights: []string{
				"Конкурентный уровень оплаты труда и премии за результат",
				"Официальное трудоустройство и стабильные выплаты",
				"Работа на стратегически значимых промышленных объектах",
				"Профессиональный рост в команде с сильной инженерной экспертизой",
			},
		},
	}
}

// Ptr returns a pointer to v. Required scalar fields are pointers so that
// an absent JSON key is distinguishable from its zero value.
func Ptr[T any](v T) *T {
	return &v
}
