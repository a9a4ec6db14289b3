package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/notecanvas/internal/domain"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
)

const (
	icsProductID   = "-//notecanvas//Calendar Notes//EN"
	icsStampLayout = "20060102T150405Z"
	icsDateLayout  = "20060102"
	icsLineOctets  = 75
)

type Calendar struct {
	repo  domain.CalendarRepository
	clock clockwork.Clock
}

func NewCalendar(repo domain.CalendarRepository, clock clockwork.Clock) *Calendar {
	return &Calendar{repo: repo, clock: clock}
}

// List returns the user's notes by date, oldest first.
func (s *Calendar) List(ctx context.Context, userID uuid.UUID) ([]domain.CalendarNote, error) {
	return s.repo.List(ctx, userID)
}

func (s *Calendar) Add(ctx context.Context, userID uuid.UUID, date, text string) (*domain.CalendarNote, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ValidationError("text is required")
	}
	return s.repo.Add(ctx, userID, date, text)
}

func (s *Calendar) Delete(ctx context.Context, userID uuid.UUID, noteID int64) error {
	return s.repo.Delete(ctx, userID, noteID)
}

// ExportICS writes all of the user's notes as all-day iCalendar events.
func (s *Calendar) ExportICS(ctx context.Context, userID uuid.UUID, w io.Writer) error {
	notes, err := s.repo.List(ctx, userID)
	if err != nil {
		return err
	}
	return WriteICS(w, notes, s.clock.Now())
}

// WriteICS renders notes as an RFC 5545 calendar with CRLF line endings.
// Notes with an unparsable date are skipped.
func WriteICS(w io.Writer, notes []domain.CalendarNote, now time.Time) error {
	ew := &errWriter{w: w}
	ew.line("BEGIN:VCALENDAR")
	ew.line("VERSION:2.0")
	ew.line("PRODID:" + icsProductID)
	ew.line("CALSCALE:GREGORIAN")
	ew.line("X-WR-CALNAME:Calendar notes")

	stamp := now.UTC().Format(icsStampLayout)
	for _, note := range notes {
		date, err := time.Parse(domain.DateLayout, note.Date)
		if err != nil {
			continue
		}
		ew.line("BEGIN:VEVENT")
		ew.line(fmt.Sprintf("UID:calendar-note-%d@notecanvas", note.ID))
		ew.line("DTSTAMP:" + stamp)
		ew.line("DTSTART;VALUE=DATE:" + date.Format(icsDateLayout))
		ew.line("DTEND;VALUE=DATE:" + date.AddDate(0, 0, 1).Format(icsDateLayout))
		ew.line("SUMMARY:" + escapeICSText(note.Text))
		ew.line("END:VEVENT")
	}

	ew.line("END:VCALENDAR")
	return ew.err
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\r", "", "\n", `\n`)

func escapeICSText(s string) string {
	return icsEscaper.Replace(s)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) line(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, foldICSLine(s)+"\r\n")
}

// foldICSLine splits s into lines of at most 75 octets, continuation lines
// starting with a space. Multi-byte runes are never split.
func foldICSLine(s string) string {
	if len(s) <= icsLineOctets {
		return s
	}

	var b strings.Builder
	limit := icsLineOctets
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		b.WriteString(s[:cut])
		b.WriteString("\r\n ")
		s = s[cut:]
		limit = icsLineOctets - 1
	}
	b.WriteString(s)
	return b.String()
}
