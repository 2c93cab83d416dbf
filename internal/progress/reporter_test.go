package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewCIReporter(&buf)

	r.Start(2)
	r.Step("index.html")
	r.Step("blog/post-1.html")
	r.Finish()

	want := "Compiling 2 pages\n[1/2] index.html\n[2/2] blog/post-1.html\nCompilation complete\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCIReporterConcurrentSteps(t *testing.T) {
	var buf bytes.Buffer
	r := NewCIReporter(&buf)
	r.Start(50)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Step("page")
		}()
	}
	wg.Wait()

	if !strings.Contains(buf.String(), "[50/50] page") {
		t.Errorf("last step missing from output:\n%s", buf.String())
	}
}

func TestNewReporterCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter().(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}
