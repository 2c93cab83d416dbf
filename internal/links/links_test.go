package links

import "testing"

func TestCleanPath(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"/index.html", "/"},
		{"/blog/index.html#top", "/blog/"},
		{"/about.html#team", "/about.html"},
		{"/blog/", "/blog/"},
	}
	for _, tt := range tests {
		if got := CleanPath(tt.input); got != tt.want {
			t.Errorf("CleanPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPageRelations(t *testing.T) {
	tests := []struct {
		ref, path       string
		current, parent bool
	}{
		{"/blog/", "/blog/post-1.html", false, true},
		{"/blog/post-1.html", "/blog/post-1.html", true, true},
		{"/", "/index.html", true, true},
		{"/about.html", "/blog/post-1.html", false, false},
		{"/blog/post-1.html#comments", "/blog/post-1.html", true, true},
		{"/blog/", "", false, false},
	}
	for _, tt := range tests {
		if got := IsCurrentPage(tt.ref, tt.path); got != tt.current {
			t.Errorf("IsCurrentPage(%q, %q) = %v, want %v", tt.ref, tt.path, got, tt.current)
		}
		if got := IsParentPage(tt.ref, tt.path); got != tt.parent {
			t.Errorf("IsParentPage(%q, %q) = %v, want %v", tt.ref, tt.path, got, tt.parent)
		}
	}
}

func TestActivate(t *testing.T) {
	a := NewActivator("active")

	tests := []struct {
		name, input, path, want string
	}{
		{
			name:  "parent",
			input: `<sergey-link to="/blog/" class="nav">Blog</sergey-link>`,
			path:  "/blog/post-1.html",
			want:  `<a href="/blog/" class="active nav">Blog</a>`,
		},
		{
			name:  "current",
			input: `<sergey-link href="/blog/post-1.html">Post</sergey-link>`,
			path:  "/blog/post-1.html",
			want:  `<a href="/blog/post-1.html" class="active" aria-current="page">Post</a>`,
		},
		{
			name:  "unrelated",
			input: `<sergey-link to="/about.html" id="x">About</sergey-link>`,
			path:  "/blog/post-1.html",
			want:  `<a href="/about.html" id="x">About</a>`,
		},
		{
			name:  "to wins over href",
			input: `<sergey-link to="/a.html" href="/b.html">A</sergey-link>`,
			path:  "/c.html",
			want:  `<a href="/a.html">A</a>`,
		},
		{
			name:  "no links",
			input: `<p>plain</p>`,
			path:  "/index.html",
			want:  `<p>plain</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Activate(tt.input, tt.path); got != tt.want {
				t.Errorf("Activate = %q, want %q", got, tt.want)
			}
		})
	}
}
