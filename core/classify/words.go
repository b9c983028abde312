package classify

import (
	"bufio"
	"bytes"
	"os"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"
)

// CountableExts are the extensions whose word counts are recorded.
var CountableExts = map[string]bool{
	".md": true, ".txt": true, ".tsx": true, ".ts": true, ".css": true,
	".yaml": true, ".py": true, ".html": true,
}

// FrontMatter holds the metadata keys read from a leading YAML block.
type FrontMatter struct {
	Title      string `yaml:"title"`
	TargetDate string `yaml:"target_date"`
}

// IsCountable reports whether words are counted for the path.
func IsCountable(p string) bool {
	return CountableExts[strings.ToLower(path.Ext(p))]
}

// CountWords returns the whitespace-delimited word count of a file along
// with its front matter. HTML files are counted on their text content.
func CountWords(fullPath string) (int, FrontMatter, error) {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return 0, FrontMatter{}, err
	}
	if strings.EqualFold(path.Ext(fullPath), ".html") {
		n, err := countHTMLWords(data)
		return n, FrontMatter{}, err
	}
	body, meta := SplitFrontMatter(data)
	return len(strings.Fields(string(body))), meta, nil
}

// SplitFrontMatter strips a leading "---" block and parses it as YAML.
// Malformed YAML is still stripped but yields empty metadata.
func SplitFrontMatter(data []byte) ([]byte, FrontMatter) {
	var meta FrontMatter
	if !bytes.HasPrefix(data, []byte("---")) {
		return data, meta
	}
	end := bytes.Index(data[3:], []byte("---"))
	if end < 0 {
		return data, meta
	}
	block := data[3 : 3+end]
	_ = yaml.Unmarshal(block, &meta)
	return data[3+end+3:], meta
}

func countHTMLWords(data []byte) (int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	doc.Find("script, style, noscript").Remove()
	return len(strings.Fields(doc.Text())), nil
}

// CountLines returns the number of lines in a file.
func CountLines(fullPath string) (int, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var n int
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}
