package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestNewPageFromHTML(t *testing.T) {
	page, err := NewPageFromHTML(strings.NewReader(`<html data-hv-viewport="1280,720"><head><title>  Deploy thread </title></head><body><p>x</p></body></html>`), "https://chat.example.test/t")
	if err != nil {
		t.Fatalf("NewPageFromHTML() error = %v", err)
	}
	if page.Title != "Deploy thread" {
		t.Errorf("Title = %q, want %q", page.Title, "Deploy thread")
	}
	if page.URL != "https://chat.example.test/t" {
		t.Errorf("URL = %q", page.URL)
	}
	if page.Viewport.W != 1280 || page.Viewport.H != 720 {
		t.Errorf("Viewport = %+v, want 1280x720", page.Viewport)
	}
	if page.Body().Find("p").Text() != "x" {
		t.Error("Body() did not return the document body")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestNewPageFromHTML_ReadError(t *testing.T) {
	_, err := NewPageFromHTML(failingReader{}, "file.html")
	var snapErr *SnapshotError
	if !errors.As(err, &snapErr) {
		t.Fatalf("error = %v, want *SnapshotError", err)
	}
	if snapErr.Op != "parse" {
		t.Errorf("Op = %q, want parse", snapErr.Op)
	}
}

func TestPage_RectOf(t *testing.T) {
	page := mustPage(t, `<html><body>
<div id="ok" data-hv-rect="10,20,300,40">a</div>
<div id="bad" data-hv-rect="10,20,x,40">b</div>
<div id="short" data-hv-rect="10,20">c</div>
<div id="none">d</div>
</body></html>`)

	r, ok := page.RectOf(page.Doc.Find("#ok"))
	if !ok || r != (Rect{X: 10, Y: 20, W: 300, H: 40}) {
		t.Errorf("RectOf(#ok) = %+v, %v", r, ok)
	}
	if r.Area() != 12000 || r.Right() != 310 || r.CenterX() != 160 {
		t.Errorf("Rect helpers = %v %v %v", r.Area(), r.Right(), r.CenterX())
	}
	for _, id := range []string{"#bad", "#short", "#none"} {
		if _, ok := page.RectOf(page.Doc.Find(id)); ok {
			t.Errorf("RectOf(%s) ok = true, want false", id)
		}
	}
}

func TestPage_HasArea(t *testing.T) {
	page := mustPage(t, `<html><body>
<div id="plain">a</div>
<div id="sized" data-hv-rect="0,0,5,5">b</div>
<div id="flat" data-hv-rect="0,0,5,0">c</div>
<div hidden><span id="child">d</span></div>
<div style="visibility: hidden" id="invisible">e</div>
</body></html>`)

	tests := []struct {
		id   string
		want bool
	}{
		{"#plain", true},
		{"#sized", true},
		{"#flat", false},
		{"#child", false},
		{"#invisible", false},
		{"#missing", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := page.HasArea(page.Doc.Find(tt.id)); got != tt.want {
				t.Errorf("HasArea(%s) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestPage_ResolveURL(t *testing.T) {
	page := &Page{URL: "https://chat.example.test/client/T1/C1"}
	tests := []struct {
		href string
		want string
	}{
		{"/docs", "https://chat.example.test/docs"},
		{"other", "https://chat.example.test/client/T1/other"},
		{"https://x.test/a", "https://x.test/a"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := page.ResolveURL(tt.href); got != tt.want {
				t.Errorf("ResolveURL(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}

	if got := (&Page{}).ResolveURL("/docs"); got != "/docs" {
		t.Errorf("ResolveURL without page URL = %q, want /docs", got)
	}
}
