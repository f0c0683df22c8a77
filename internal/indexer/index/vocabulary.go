package index

import "sort"

func vocabulary(docs [][]string) []string {
	seen := make(map[string]struct{})
	words := make([]string, 0)
	for _, doc := range docs {
		for _, token := range doc {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			words = append(words, token)
		}
	}
	sort.Strings(words)
	return words
}
