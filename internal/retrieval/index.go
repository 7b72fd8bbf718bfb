package retrieval

import (
	"context"
	_ "embed"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var knowledgeYAML []byte

// Snippet is one entry of the bundled knowledge base.
type Snippet struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Text  string `yaml:"text" json:"text"`
}

// Match is a snippet scored against a query.
type Match struct {
	Snippet Snippet `json:"snippet"`
	Score   float64 `json:"score"`
}

// Index holds the knowledge base with precomputed snippet vectors.
type Index struct {
	embedder Embedder
	snippets []Snippet
	vectors  [][]float64
}

// NewIndex builds an index over the given snippets, embedding each once.
func NewIndex(ctx context.Context, embedder Embedder, snippets []Snippet) (*Index, error) {
	idx := &Index{
		embedder: embedder,
		snippets: snippets,
		vectors:  make([][]float64, len(snippets)),
	}
	for i, s := range snippets {
		vec, err := embedder.Embed(ctx, s.Title+" "+s.Text)
		if err != nil {
			return nil, eris.Wrapf(err, "retrieval: embed snippet %s", s.ID)
		}
		idx.vectors[i] = vec
	}
	return idx, nil
}

// NewBundledIndex builds an index over the embedded knowledge base.
func NewBundledIndex(ctx context.Context, embedder Embedder) (*Index, error) {
	var snippets []Snippet
	if err := yaml.Unmarshal(knowledgeYAML, &snippets); err != nil {
		return nil, eris.Wrap(err, "retrieval: parse bundled knowledge base")
	}
	return NewIndex(ctx, embedder, snippets)
}

// Len returns the number of indexed snippets.
func (idx *Index) Len() int {
	return len(idx.snippets)
}

// Search returns the top k snippets by cosine similarity to the query,
// highest score first. Snippets with zero similarity are omitted.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 || len(idx.snippets) == 0 {
		return nil, nil
	}

	qvec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "retrieval: embed query")
	}

	matches := make([]Match, 0, len(idx.snippets))
	for i, s := range idx.snippets {
		score := CosineSimilarity(qvec, idx.vectors[i])
		if score > 0 {
			matches = append(matches, Match{Snippet: s, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
