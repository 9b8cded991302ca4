package duckblog

import "sort"

// TagIndex answers tag queries over a single Corpus.
type TagIndex struct {
	corpus Corpus
	byTag  map[string]Corpus
	tags   []Tag
}

// NewTagIndex indexes corpus by normalized tag name. Per-tag lists keep the
// corpus order.
func NewTagIndex(corpus Corpus) *TagIndex {
	idx := &TagIndex{
		corpus: corpus,
		byTag:  make(map[string]Corpus),
	}
	for _, p := range corpus {
		seen := make(map[string]bool, len(p.Metadata.Tags))
		for _, t := range p.Metadata.Tags {
			key := normalizeTag(t.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			if _, ok := idx.byTag[key]; !ok {
				idx.tags = append(idx.tags, t)
			}
			idx.byTag[key] = append(idx.byTag[key], p)
		}
	}
	sort.SliceStable(idx.tags, func(i, j int) bool {
		return normalizeTag(idx.tags[i].Name) < normalizeTag(idx.tags[j].Name)
	})
	return idx
}

// ListByTag returns the posts carrying tag, newest first. An empty tag
// returns the whole corpus.
func (idx *TagIndex) ListByTag(tag string) Corpus {
	key := normalizeTag(tag)
	if key == "" {
		return idx.corpus
	}
	return idx.byTag[key]
}

// Tags returns the distinct tags in the corpus sorted by name. The spelling
// of the first occurrence wins.
func (idx *TagIndex) Tags() []Tag {
	out := make([]Tag, len(idx.tags))
	copy(out, idx.tags)
	return out
}

// Len returns the number of distinct tags.
func (idx *TagIndex) Len() int { return len(idx.tags) }

// ListByTag filters corpus without building an index.
func ListByTag(corpus Corpus, tag string) Corpus {
	return NewTagIndex(corpus).ListByTag(tag)
}
