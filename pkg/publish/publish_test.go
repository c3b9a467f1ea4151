package publish

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/glint-ui/glint/pkg/fdom"
	"github.com/glint-ui/glint/pkg/render"
)

type fakeS3 struct {
	puts map[string]string // key -> body
	err  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{puts: make(map[string]string)}
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.puts[*input.Key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func TestPathToKey(t *testing.T) {
	cases := map[string]string{
		"/":            "index.html",
		"":             "index.html",
		"/about":       "about/index.html",
		"/blog/post":   "blog/post/index.html",
		"/404.html":    "404.html",
		"/docs/intro/": "docs/intro/index.html",
	}
	for path, want := range cases {
		if got := pathToKey(path); got != want {
			t.Errorf("pathToKey(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestPublishPage(t *testing.T) {
	fake := newFakeS3()
	p := New(fake, "my-site", "")

	key, err := p.PublishPage(context.Background(), "/about", render.PageData{
		Title: "About",
		Body:  fdom.H1(nil, "About us"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if key != "about/index.html" {
		t.Errorf("key %q", key)
	}
	body := fake.puts[key]
	if !strings.Contains(body, "<h1>About us</h1>") || !strings.Contains(body, "<title>About</title>") {
		t.Errorf("body: %s", body)
	}
}

func TestPublishPagePrefix(t *testing.T) {
	fake := newFakeS3()
	p := New(fake, "my-site", "staging")

	key, err := p.PublishPage(context.Background(), "/", render.PageData{Body: fdom.Div(nil)})
	if err != nil {
		t.Fatal(err)
	}
	if key != "staging/index.html" {
		t.Errorf("key %q", key)
	}
}

func TestPublishSite(t *testing.T) {
	fake := newFakeS3()
	p := New(fake, "my-site", "")

	err := p.PublishSite(context.Background(), map[string]render.PageData{
		"/":      {Body: fdom.H1(nil, "Home")},
		"/about": {Body: fdom.H1(nil, "About")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(fake.puts) != 2 {
		t.Errorf("uploaded %d objects", len(fake.puts))
	}
	if _, ok := fake.puts["index.html"]; !ok {
		t.Error("home page missing")
	}
}

func TestPublishSiteStopsOnError(t *testing.T) {
	fake := newFakeS3()
	fake.err = errors.New("access denied")
	p := New(fake, "my-site", "")

	err := p.PublishSite(context.Background(), map[string]render.PageData{
		"/": {Body: fdom.Div(nil)},
	})
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Errorf("err = %v", err)
	}
}
