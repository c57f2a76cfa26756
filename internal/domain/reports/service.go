package reports

import (
	"context"
	"fmt"

	"hrportal/internal/domain/analytics"
)

type DashboardSource interface {
	Dashboard(ctx context.Context, opts analytics.Options) (*analytics.Dashboard, error)
}

// Service runs the analytics and hands the resulting document to the configured renderer.
type Service struct {
	Analytics DashboardSource
	Renderer  Renderer
}

func NewService(source DashboardSource, renderer Renderer) *Service {
	return &Service{Analytics: source, Renderer: renderer}
}

type Export struct {
	Filename string
	PDF      []byte
}

func (s *Service) Export(ctx context.Context, meta CompanyMeta, opts analytics.Options) (Export, error) {
	dashboard, err := s.Analytics.Dashboard(ctx, opts)
	if err != nil {
		return Export{}, fmt.Errorf("collect analytics: %w", err)
	}
	doc := BuildDocument(dashboard, meta)
	pdf, err := s.Renderer.Render(ctx, doc)
	if err != nil {
		return Export{}, err
	}
	return Export{Filename: doc.Filename(), PDF: pdf}, nil
}
