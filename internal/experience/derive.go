package experience

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jonathan/sng-admin/internal/types"
)

const (
	defaultSubject    = "Проект из реестра опыта"
	defaultWork       = "Комплекс работ"
	defaultCustomer   = "Заказчик"
	defaultContractor = "ООО «СтройНефтеГаз»"
	defaultINN        = "1655282573"
	defaultImage      = "/images/background-project.png"
	defaultObjectType = "Промышленный объект"
	defaultRegion     = "Регионы РФ"
	defaultCompetency = "comp-construction"
	completedStatus   = "Завершен"

	// IDPrefix and SlugPrefix mark records derived from the ledger.
	IDPrefix   = "exp-project-"
	SlugPrefix = "experience-"
)

// rule maps the presence of any keyword to a label. Rules are evaluated
// in order.
type rule struct {
	keywords []string
	label    string
}

var objectTypeRules = []rule{
	{[]string{"грс"}, "ГРС"},
	{[]string{"гис"}, "ГИС"},
	{[]string{"м-7", "автомобильной дороги"}, "Автодорога"},
	{[]string{"нпс", "лпдс", "рну"}, "Нефтепроводная инфраструктура"},
	{[]string{"кс"}, "Компрессорная станция"},
	{[]string{"итсо", "тсо", "охраны"}, "ИТСО/ТСО"},
}

var regionRules = []rule{
	{[]string{"татарстан", "казань", "альметьев"}, "Республика Татарстан"},
	{[]string{"чебоксар", "чуваш"}, "Чувашская Республика"},
	{[]string{"удмурт", "увин"}, "Удмуртская Республика"},
	{[]string{"перм", "чайковск"}, "Пермский край"},
	{[]string{"иванов"}, "Ивановская область"},
	{[]string{"владимир"}, "Владимирская область"},
	{[]string{"нижегород", "нижний новгород"}, "Нижегородская область"},
	{[]string{"марий"}, "Республика Марий Эл"},
	{[]string{"башкир", "салават", "туймаз"}, "Республика Башкортостан"},
	{[]string{"курган"}, "Курганская область"},
}

var workTypeRules = []rule{
	{[]string{"пнр", "пуско"}, "ПНР"},
	{[]string{"автомат", "асу", "кип", "телемехан"}, "Автоматизация"},
	{[]string{"шеф"}, "Шеф-монтаж"},
	{[]string{"монтаж", "строител"}, "СМР"},
	{[]string{"итсо"}, "ИТСО"},
	{[]string{"тсо", "сигнализац"}, "ТСО"},
}

var competencyRules = []rule{
	{[]string{"шеф"}, "comp-supervision"},
	{[]string{"пнр", "пуско"}, "comp-commissioning"},
	{[]string{"автомат", "асу", "кип", "телемехан"}, "comp-automation"},
	{[]string{"итсо", "тсо", "сигнализац", "охраны"}, "comp-security"},
	{[]string{"монтаж", "строител"}, defaultCompetency},
}

var (
	standardTasks = []string{
		"Выполнить строительно-монтажные и/или наладочные работы в согласованные сроки.",
		"Обеспечить соответствие работ техническим требованиям заказчика.",
		"Подготовить комплект исполнительной и отчетной документации.",
	}
	standardSolutions = []string{
		"Сформирован поэтапный план производства работ и технического контроля.",
		"Организована координация инженерных и производственных служб на площадке.",
		"Проведены необходимые испытания и верификация параметров.",
	}
	standardResults = []string{
		"Работы завершены и переданы заказчику в установленном порядке.",
		"Подтверждена работоспособность систем по итогам приемо-сдаточных процедур.",
		"Сформирован комплект материалов для тендерного и эксплуатационного архива.",
	}
)

// firstMatch returns the label of the first rule matching source.
func firstMatch(rules []rule, source, fallback string) string {
	for _, r := range rules {
		if containsAny(source, r.keywords...) {
			return r.label
		}
	}
	return fallback
}

// allMatches returns the distinct labels of every matching rule in order.
func allMatches(rules []rule, source string) []string {
	var labels []string
	seen := make(map[string]struct{})
	for _, r := range rules {
		if !containsAny(source, r.keywords...) {
			continue
		}
		if _, dup := seen[r.label]; dup {
			continue
		}
		seen[r.label] = struct{}{}
		labels = append(labels, r.label)
	}
	return labels
}

// ObjectType classifies a row by subject and work.
func ObjectType(subject, work string) string {
	return firstMatch(objectTypeRules, strings.ToLower(subject+" "+work), defaultObjectType)
}

// Region classifies a row by subject only.
func Region(subject string) string {
	return firstMatch(regionRules, strings.ToLower(subject), defaultRegion)
}

// WorkTypes lists the work categories of a row. Without any keyword the
// first comma segment of work is used.
func WorkTypes(subject, work string) []string {
	if labels := allMatches(workTypeRules, strings.ToLower(subject+" "+work)); len(labels) > 0 {
		return labels
	}
	first, _, _ := strings.Cut(work, ",")
	if first = normalizeSpace(first); first != "" {
		return []string{first}
	}
	return []string{defaultWork}
}

// CompetencyIDs lists the related competencies of a row.
func CompetencyIDs(subject, work string) []string {
	if labels := allMatches(competencyRules, strings.ToLower(subject+" "+work)); len(labels) > 0 {
		return labels
	}
	return []string{defaultCompetency}
}

// ProjectFromRow derives a complete project record from ledger row number
// index. currentYear stands in for a missing year.
func ProjectFromRow(row types.ExperienceItem, index, currentYear int) types.Project {
	token := safeToken(row.ID, fmt.Sprintf("exp-%d", index+1))

	year := currentYear
	if row.Year != nil {
		year = *row.Year
	}

	subject := orDefault(normalizeSpace(row.Subject), defaultSubject)
	work := orDefault(normalizeSpace(row.Work), defaultWork)
	customer := orDefault(normalizeSpace(row.Customer), defaultCustomer)

	objectType := ObjectType(subject, work)
	workTypes := WorkTypes(subject, work)
	name := truncate(customerName(customer), 300)

	return types.Project{
		ID:         IDPrefix + token,
		Slug:       SlugPrefix + token,
		Year:       year,
		Title:      truncate(subject, 220),
		ShortTitle: truncate(strings.Join(workTypes, ", "), 200),
		Excerpt:    truncate(fmt.Sprintf("Выполнены работы: %s. Заказчик: %s.", work, name), 500),
		HeroImage:  defaultImage,
		Gallery:    []string{defaultImage},
		Region:     Region(subject),
		ObjectType: objectType,
		WorkTypes:  workTypes,
		Passport: types.ProjectPassport{
			Period:     strconv.Itoa(year),
			Status:     completedStatus,
			Customer:   name,
			Contractor: defaultContractor,
			INN:        extractINN(customer),
			Location:   truncate(subject, 260),
			ObjectType: truncate(objectType, 180),
			WorkScope:  truncate(work, 280),
		},
		Tasks:                slices.Clone(standardTasks),
		Solutions:            slices.Clone(standardSolutions),
		Results:              slices.Clone(standardResults),
		Files:                []types.ProjectFile{},
		RelatedCompetencyIDs: CompetencyIDs(subject, work),
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
