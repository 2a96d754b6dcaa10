package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldExclude_DefaultPatterns_TruePositives(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "bare .env", path: ".env"},
		{name: ".env.local", path: ".env.local"},
		{name: "nested .env", path: "config/.env"},
		{name: "secrets top level", path: "secrets/api-key.txt"},
		{name: "secrets nested", path: "config/secrets/db.json"},
		{name: "credentials.json", path: "credentials.json"},
		{name: "nested credentials", path: "config/credentials.yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, ShouldExclude(tt.path, DefaultExcludePatterns))
		})
	}
}

func TestShouldExclude_DefaultPatterns_NoSubstringFalsePositives(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		pattern string
	}{
		{name: "environment.ts is not .env", path: "src/environment.ts", pattern: "**/.env*"},
		{name: "secret-manager is not secrets dir", path: "src/secret-manager.ts", pattern: "**/secrets/**"},
		{name: "credential singular", path: "src/credential.ts", pattern: "**/credentials*"},
		{name: "mysecrets dir", path: "mysecrets/key.txt", pattern: "**/secrets/**"},
		{name: "env in middle of name", path: "docs/my.env.md", pattern: "**/.env*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, ShouldExclude(tt.path, []string{tt.pattern}))
		})
	}
}

func TestShouldExclude_EmptyPatterns(t *testing.T) {
	for _, p := range []string{".env", "secrets/key", "/abs/credentials.json", ""} {
		assert.False(t, ShouldExclude(p, nil), p)
		assert.False(t, ShouldExclude(p, []string{}), p)
	}
}

func TestShouldExclude_AbsoluteAndRelativeAgree(t *testing.T) {
	paths := []string{
		"secrets/key.txt",
		"config/.env",
		"src/index.ts",
		"README.md",
		"config/credentials.yml",
		"src/secret-manager.ts",
	}

	for _, rel := range paths {
		t.Run(rel, func(t *testing.T) {
			abs := "/home/dev/project/" + rel
			assert.Equal(t,
				ShouldExclude(rel, DefaultExcludePatterns),
				ShouldExclude(abs, DefaultExcludePatterns))
		})
	}

	assert.True(t, ShouldExclude("/Users/dev/project/secrets/key.txt", []string{"**/secrets/**"}))
	assert.True(t, ShouldExclude("./config/.env", DefaultExcludePatterns))
}

func TestShouldExclude_AnchoredPatternOnAbsolutePath(t *testing.T) {
	// Given: a pattern anchored at the project root
	patterns := []string{"private/**"}

	// Then: relative paths match only at the root
	assert.True(t, ShouldExclude("private/notes.md", patterns))
	assert.False(t, ShouldExclude("docs/private/notes.md", patterns))

	// And: absolute paths match at any depth since the root is unknown
	assert.True(t, ShouldExclude("/home/dev/project/private/notes.md", patterns))
}

func TestShouldExclude_WildcardSemantics(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		path     string
		expected bool
	}{
		{name: "single star stays in segment", pattern: "src/*.ts", path: "src/a/b.ts", expected: false},
		{name: "single star match", pattern: "src/*.ts", path: "src/b.ts", expected: true},
		{name: "double star zero segments", pattern: "src/**/b.ts", path: "src/b.ts", expected: true},
		{name: "double star many segments", pattern: "src/**/b.ts", path: "src/x/y/z/b.ts", expected: true},
		{name: "basename pattern anywhere", pattern: "*.pem", path: "deploy/tls/server.pem", expected: true},
		{name: "basename pattern no match", pattern: "*.pem", path: "deploy/tls/server.crt", expected: false},
		{name: "question mark", pattern: "**/key?.txt", path: "a/key1.txt", expected: true},
		{name: "character class", pattern: "**/id_[rd]sa", path: ".ssh/id_rsa", expected: true},
		{name: "collapsed double stars", pattern: "**/**/secrets/**", path: "secrets/x", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldExclude(tt.path, []string{tt.pattern}))
		})
	}
}

func TestShouldExclude_MalformedPatternIgnored(t *testing.T) {
	assert.False(t, ShouldExclude("a[b", []string{"a["}))
	assert.True(t, ShouldExclude(".env", []string{"a[", "**/.env*"}))
}

func TestCompile(t *testing.T) {
	_, ok := Compile("")
	assert.False(t, ok)
	_, ok = Compile("   ")
	assert.False(t, ok)

	p, ok := Compile("**/.env*")
	assert.True(t, ok)
	assert.Equal(t, "**/.env*", p.String())
	assert.True(t, p.Match(".env.production"))
}

func TestFilter_PreservesOrder(t *testing.T) {
	got := Filter([]string{"src/index.ts", ".env", "README.md", "secrets/a"}, DefaultExcludePatterns)
	assert.Equal(t, []string{"src/index.ts", "README.md"}, got)
}
