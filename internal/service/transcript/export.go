package transcript

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Export writes the finalized transcript for every language to w: the source
// section first, then each target in configured order, each section headed by
// a title line, bodies stripped of trailing whitespace and separated by blank
// lines. Transient partials are never exported. Returns ErrNothingToExport
// when every buffer is empty.
func (s *Store) Export(w io.Writer) error {
	var sections []string
	empty := true

	for i, lang := range s.order {
		b := s.buffers[lang.Code]
		var lines []string
		for _, rec := range b.Records() {
			lines = append(lines, rec.Text)
		}
		if len(lines) > 0 {
			empty = false
		}

		var title string
		if i == 0 {
			title = fmt.Sprintf("%s Transcript:", lang.Name)
		} else {
			title = fmt.Sprintf("%s Translation:", lang.Name)
		}
		body := strings.TrimRight(strings.Join(lines, "\n\n"), " \t\n")
		sections = append(sections, title+"\n"+body)
	}

	if empty {
		return ErrNothingToExport
	}

	content := strings.TrimRight(strings.Join(sections, "\n\n"), " \t\n") + "\n"
	if _, err := io.WriteString(w, content); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// ExportFile exports the transcript to a UTF-8 text file at path.
func (s *Store) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		s.metrics.ExportsFailed.Inc()
		return fmt.Errorf("create export file: %w", err)
	}

	if err := s.Export(f); err != nil {
		f.Close()
		os.Remove(path)
		if err != ErrNothingToExport {
			s.metrics.ExportsFailed.Inc()
		}
		return err
	}

	if err := f.Close(); err != nil {
		s.metrics.ExportsFailed.Inc()
		return fmt.Errorf("close export file: %w", err)
	}
	s.metrics.ExportsTotal.Inc()
	return nil
}
