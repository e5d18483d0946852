package view

import (
	"ats-portal/internal/rbac"
	"ats-portal/internal/session"
)

// Page is the data every template receives.
type Page struct {
	Title     string
	Path      string
	Session   *session.Session
	Gate      Gate
	Nav       []NavSection
	CSRFToken string
	Flash     string
	Data      any
}

// NewPage builds page data for s. A nil session renders the anonymous layout.
func NewPage(checker *rbac.Checker, s *session.Session, path, title string) *Page {
	gate := NewGate(checker, s)
	p := &Page{
		Title:   title,
		Path:    path,
		Session: s,
		Gate:    gate,
	}
	if _, ok := s.Role(); ok {
		p.Nav = Nav(gate, path)
	}
	return p
}

// With attaches page-specific data.
func (p *Page) With(data any) *Page {
	p.Data = data
	return p
}
