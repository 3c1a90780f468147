package playback

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		size      int64
		wantStart int64
		wantEnd   int64
		wantNil   bool
		wantErr   error
	}{
		{"empty header", "", 1000, 0, 0, true, nil},
		{"full range", "bytes=0-999", 1000, 0, 999, false, nil},
		{"partial start", "bytes=500-", 1000, 500, 999, false, nil},
		{"suffix range", "bytes=-500", 1000, 500, 999, false, nil},
		{"single byte", "bytes=0-0", 1000, 0, 0, false, nil},
		{"middle range", "bytes=100-199", 1000, 100, 199, false, nil},
		{"beyond size clamped", "bytes=0-2000", 1000, 0, 999, false, nil},
		{"suffix larger than file", "bytes=-2000", 500, 0, 499, false, nil},
		{"last byte", "bytes=999-", 1000, 999, 999, false, nil},
		{"multi range takes first", "bytes=0-99, 200-299", 1000, 0, 99, false, nil},

		{"unsatisfiable start", "bytes=1000-", 1000, 0, 0, false, ErrUnsatisfiable},
		{"unsatisfiable beyond", "bytes=1500-2000", 1000, 0, 0, false, ErrUnsatisfiable},
		{"invalid format no bytes", "invalid", 1000, 0, 0, false, ErrInvalidRange},
		{"wrong unit", "chars=0-100", 1000, 0, 0, false, ErrInvalidRange},
		{"invalid start", "bytes=abc-100", 1000, 0, 0, false, ErrInvalidRange},
		{"invalid end", "bytes=0-abc", 1000, 0, 0, false, ErrInvalidRange},
		{"negative suffix", "bytes=-0", 1000, 0, 0, false, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.header, tt.size)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("ParseRange() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseRange() unexpected error: %v", err)
				return
			}

			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseRange() = %v, want nil", got)
				}
				return
			}

			if got == nil {
				t.Errorf("ParseRange() = nil, want non-nil")
				return
			}

			if got.Start != tt.wantStart || got.End != tt.wantEnd {
				t.Errorf("ParseRange() = {%d, %d}, want {%d, %d}", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestRange_ContentLength(t *testing.T) {
	tests := []struct {
		start int64
		end   int64
		want  int64
	}{
		{0, 99, 100},
		{0, 0, 1},
		{500, 999, 500},
	}

	for _, tt := range tests {
		r := &Range{Start: tt.start, End: tt.end}
		if got := r.ContentLength(); got != tt.want {
			t.Errorf("ContentLength() = %d, want %d", got, tt.want)
		}
	}
}

func TestServer_ServeFile_Full(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("0123456789"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	srv := NewServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/files/x/stream", nil)

	if err := srv.ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("body = %q, want full content", rec.Body.String())
	}
	if rec.Header().Get("Accept-Ranges") != "bytes" {
		t.Error("missing Accept-Ranges header")
	}
}

func TestServer_ServeFile_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("0123456789"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	srv := NewServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/files/x/stream", nil)
	req.Header.Set("Range", "bytes=2-5")

	if err := srv.ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}
	if rec.Code != 206 {
		t.Errorf("status = %d, want 206", rec.Code)
	}
	if rec.Body.String() != "2345" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "2345")
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 2-5/10" {
		t.Errorf("Content-Range = %q, want bytes 2-5/10", got)
	}
}

func TestServer_ServeFile_Unsatisfiable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("0123456789"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	srv := NewServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/files/x/stream", nil)
	req.Header.Set("Range", "bytes=100-")

	if err := srv.ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}
	if rec.Code != 416 {
		t.Errorf("status = %d, want 416", rec.Code)
	}
}

func TestServer_ServeFile_InvalidRangeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("0123456789"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	srv := NewServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/files/x/stream", nil)
	req.Header.Set("Range", "chars=0-5")

	if err := srv.ServeFile(rec, req, path); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200 full-content fallback", rec.Code)
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("body = %q, want full content", rec.Body.String())
	}
}

func TestServer_ServeFile_Missing(t *testing.T) {
	srv := NewServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/files/x/stream", nil)

	if err := srv.ServeFile(rec, req, filepath.Join(t.TempDir(), "gone.mp4")); err != nil {
		t.Fatalf("ServeFile() error = %v", err)
	}
	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
