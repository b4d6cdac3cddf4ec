// Package postfile writes generated posts as Markdown with YAML frontmatter and reads them back.
package postfile

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the metadata block at the top of a post file.
type Frontmatter struct {
	Title        string `yaml:"title"`
	Slug         string `yaml:"slug"`
	Datetime     string `yaml:"datetime"`
	Source       string `yaml:"source"`
	Board        string `yaml:"board,omitempty"`
	SubmissionID string `yaml:"submission_id"`
	Model        string `yaml:"model"`
}

// Post is everything rendered into a post file.
type Post struct {
	Frontmatter
	Content   string
	SourceURL string
	TopLevel  int
	Comments  int
}

//go:embed post.tmpl
var postTpl string

var compiled = template.Must(template.New("post").Parse(postTpl))

// Render returns the Markdown document for p.
func Render(p Post) (string, error) {
	fm, err := yaml.Marshal(p.Frontmatter)
	if err != nil {
		return "", err
	}
	data := struct {
		Post
		FrontmatterYAML string
	}{Post: p, FrontmatterYAML: string(fm)}
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Filename is "<source>-<submission id>-YYYYMMDD.md".
func Filename(source, id string, t time.Time) string {
	return fmt.Sprintf("%s-%s-%s.md", strings.ToLower(source), id, t.UTC().Format("20060102"))
}

// Slug is the filename without the extension.
func Slug(source, id string, t time.Time) string {
	return strings.TrimSuffix(Filename(source, id, t), ".md")
}

// SourceURL links back to the discussion.
func SourceURL(source, id string) string {
	switch strings.ToLower(source) {
	case "hackernews":
		return "https://news.ycombinator.com/item?id=" + id
	default:
		return "https://www.reddit.com/comments/" + id
	}
}
