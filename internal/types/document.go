package types

// DocumentCategories lists the allowed document categories in display order.
var DocumentCategories = []string{
	"Учредительные",
	"СРО и лицензии",
	"Политики и регламенты",
	"Сертификаты",
	"Презентационные материалы",
}

// DocumentItem is a downloadable company document.
type DocumentItem struct {
	ID       string `json:"id" validate:"recordid"`
	Title    string `json:"title" validate:"min=3,max=260"`
	Date     string `json:"date" validate:"isodate"`
	Type     string `json:"type" validate:"min=1,max=30"`
	Size     string `json:"size" validate:"min=1,max=30"`
	Category string `json:"category" validate:"doccategory"`
	URL      string `json:"url" validate:"min=1,max=500"`
}

// RecordID returns the document id.
func (d DocumentItem) RecordID() string { return d.ID }
