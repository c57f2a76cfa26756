package reports

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var ErrRendererMissing = errors.New("report renderer is not installed")

const DefaultTitle = "HR Analytics Report"

// CompanyMeta is the letterhead printed on every exported report.
type CompanyMeta struct {
	Name        string `json:"companyName"`
	Address     string `json:"address"`
	ReportTitle string `json:"reportTitle"`
	PreparedBy  string `json:"preparedBy"`
}

func (m CompanyMeta) Normalize() CompanyMeta {
	m.Name = strings.TrimSpace(m.Name)
	m.Address = strings.TrimSpace(m.Address)
	m.ReportTitle = strings.TrimSpace(m.ReportTitle)
	m.PreparedBy = strings.TrimSpace(m.PreparedBy)
	if m.ReportTitle == "" {
		m.ReportTitle = DefaultTitle
	}
	return m
}

type Document struct {
	Meta        CompanyMeta
	GeneratedAt time.Time
	Sections    []Section
	Warnings    []string
}

type Section struct {
	Title   string
	Note    string
	Columns []string
	Rows    [][]string
}

func (s Section) Empty() bool {
	return len(s.Rows) == 0
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename builds the attachment name from the company and the generation date.
func (d Document) Filename() string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(d.Meta.Name), "-"), "-")
	if slug == "" {
		slug = "company"
	}
	return "hr-report-" + slug + "-" + d.GeneratedAt.Format("20060102") + ".pdf"
}
