package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExport_SectionsInConfiguredOrder(t *testing.T) {
	s := NewStore(testLangs())
	zh, _ := s.Buffer("zh")
	en, _ := s.Buffer("en")
	th, _ := s.Buffer("th")

	zh.Append("你好世界")
	zh.Append("谢谢大家")
	en.Append("Hello world")
	en.Append("Thank you all")
	th.Append("สวัสดีชาวโลก")
	th.AppendError("❌ Error (500)")

	var sb strings.Builder
	if err := s.Export(&sb); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got := sb.String()

	want := "Chinese Transcript:\n" +
		"你好世界\n\n谢谢大家\n\n" +
		"English Translation:\n" +
		"Hello world\n\nThank you all\n\n" +
		"Thai Translation:\n" +
		"สวัสดีชาวโลก\n\n❌ Error (500)\n"
	if got != want {
		t.Errorf("Export output:\n%q\nwant:\n%q", got, want)
	}
}

func TestExport_PartialNotIncluded(t *testing.T) {
	s := NewStore(testLangs())
	zh, _ := s.Buffer("zh")
	zh.Append("你好世界")
	zh.SetPartial("今天")

	var sb strings.Builder
	if err := s.Export(&sb); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(sb.String(), "今天") {
		t.Error("transient partial leaked into the export")
	}
}

func TestExport_NothingToExport(t *testing.T) {
	s := NewStore(testLangs())

	var sb strings.Builder
	err := s.Export(&sb)
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("Export err = %v, want ErrNothingToExport", err)
	}
	if sb.Len() != 0 {
		t.Errorf("Export wrote %q despite having nothing to export", sb.String())
	}
}

func TestExportFile_RoundTrip(t *testing.T) {
	s := NewStore(testLangs())
	zh, _ := s.Buffer("zh")
	zh.Append("你好世界")

	path := filepath.Join(t.TempDir(), "transcript.txt")
	if err := s.ExportFile(path); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "Chinese Transcript:\n你好世界") {
		t.Errorf("file content = %q", string(data))
	}
}

func TestExportFile_NoFileWhenEmpty(t *testing.T) {
	s := NewStore(testLangs())

	path := filepath.Join(t.TempDir(), "transcript.txt")
	if err := s.ExportFile(path); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("ExportFile err = %v, want ErrNothingToExport", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty export left a file behind")
	}
}
