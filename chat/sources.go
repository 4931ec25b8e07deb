package chat

import "github.com/thenewhumanitarian/chat-service/retrieval"

// maxSources caps the relevant_articles list handed back to the CMS.
const maxSources = 8

// ExtractSources converts retrieved documents into a deduplicated, capped
// list of citable sources. Documents are visited in retrieval order; ones
// without a url are skipped; the first occurrence of each url wins.
func ExtractSources(docs []retrieval.Document) []Source {
	seen := make(map[string]struct{}, len(docs))
	sources := make([]Source, 0, len(docs))

	for _, doc := range docs {
		url := metadataString(doc.Metadata, "url")
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}

		label := metadataString(doc.Metadata, "title")
		if label == "" {
			label = url
		}
		if label == "" {
			label = "Source"
		}

		sources = append(sources, Source{
			ID:    doc.Metadata["id"],
			URL:   url,
			Label: label,
		})

		if len(sources) == maxSources {
			break
		}
	}

	return sources
}

func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	value, ok := metadata[key].(string)
	if !ok {
		return ""
	}
	return value
}
