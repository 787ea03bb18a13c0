package research

import (
	"sort"
)

// CatalogEntry is a canned paper and the source it is listed under
type CatalogEntry struct {
	Source string
	Paper  Paper
}

var catalog = []CatalogEntry{
	{"arxiv", Paper{
		ID:        "arxiv_2401.00123",
		Title:     "Error-Corrected Quantum Computing with Surface Codes",
		Authors:   []string{"L. Nakamura", "R. Okafor", "S. Brandt", "P. Iyer"},
		Abstract:  "We study logical qubit lifetimes under surface code error correction on superconducting quantum hardware.",
		Year:      2024,
		Journal:   "ArXiv",
		Citations: 41,
		Keywords:  []string{"quantum", "computing", "qubits", "error correction"},
		URL:       "https://arxiv.org/abs/2401.00123",
	}},
	{"scholar", Paper{
		ID:        "scholar_quantum_algorithms",
		Title:     "Variational Quantum Algorithms for Optimization",
		Authors:   []string{"M. Cerezo", "A. Sone"},
		Abstract:  "A survey of variational quantum algorithms and their application to combinatorial optimization problems.",
		Year:      2023,
		Journal:   "Nature Reviews Physics",
		Citations: 812,
		Keywords:  []string{"quantum", "algorithms", "optimization", "variational"},
	}},
	{"arxiv", Paper{
		ID:        "arxiv_2310.04567",
		Title:     "Sparse Attention in Large Neural Networks",
		Authors:   []string{"J. Park", "E. Lindqvist", "K. Mensah"},
		Abstract:  "We analyse sparse attention patterns that reduce the memory cost of training large neural networks.",
		Year:      2023,
		Journal:   "ArXiv",
		Citations: 97,
		Keywords:  []string{"neural", "networks", "attention", "deep learning"},
		URL:       "https://arxiv.org/abs/2310.04567",
	}},
	{"scholar", Paper{
		ID:        "scholar_ml_robustness",
		Title:     "Distribution Shift and Robustness in Machine Learning",
		Authors:   []string{"H. Zhou", "D. Romero"},
		Abstract:  "Benchmarks and methods for machine learning models evaluated under realistic distribution shift.",
		Year:      2022,
		Journal:   "Journal of Machine Learning Research",
		Citations: 356,
		Keywords:  []string{"machine", "learning", "robustness", "evaluation"},
	}},
	{"scholar", Paper{
		ID:        "scholar_ai_reasoning",
		Title:     "Symbolic Reasoning in Modern AI Systems",
		Authors:   []string{"F. Moreau", "T. Adeyemi", "Y. Sato"},
		Abstract:  "We revisit symbolic reasoning components in AI systems that combine knowledge bases with learned models.",
		Year:      2024,
		Journal:   "Artificial Intelligence",
		Citations: 58,
		Keywords:  []string{"ai", "reasoning", "knowledge", "artificial intelligence"},
	}},
	{"arxiv", Paper{
		ID:        "arxiv_2405.07788",
		Title:     "Energy-Aware Scheduling for Edge Computing",
		Authors:   []string{"C. Alvarez", "N. Petrov"},
		Abstract:  "An energy-aware task scheduler for edge computing clusters with intermittent connectivity.",
		Year:      2024,
		Journal:   "ArXiv",
		Citations: 12,
		Keywords:  []string{"edge", "computing", "scheduling", "energy"},
		URL:       "https://arxiv.org/abs/2405.07788",
	}},
	{"scholar", Paper{
		ID:        "scholar_climate_models",
		Title:     "Data-Driven Climate Modeling at Regional Scale",
		Authors:   []string{"B. Haugen", "I. Kowalski", "V. Rao", "O. Nwosu"},
		Abstract:  "Regional climate projections using statistical downscaling and learned emulators of physical models.",
		Year:      2023,
		Journal:   "Geophysical Research Letters",
		Citations: 134,
		Keywords:  []string{"climate", "modeling", "downscaling", "analysis"},
	}},
	{"arxiv", Paper{
		ID:        "arxiv_2312.09911",
		Title:     "Reproducible Research Methodology for Computational Science",
		Authors:   []string{"G. Ferreira"},
		Abstract:  "Guidelines and tooling for reproducible research methodology in computational science projects.",
		Year:      2023,
		Journal:   "ArXiv",
		Citations: 27,
		Keywords:  []string{"research", "methodology", "reproducibility", "analysis"},
		URL:       "https://arxiv.org/abs/2312.09911",
	}},
}

// Catalog returns a copy of the canned papers
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// Ranked is a catalog entry with its keyword overlap score
type Ranked struct {
	CatalogEntry
	Score int
}

// RankCatalog scores entries by how many query tokens appear in their title or
// keywords and returns those with a positive score, best first. Ties keep
// catalog order.
func RankCatalog(entries []CatalogEntry, query string) []Ranked {
	tokens := Tokens(query)
	if len(tokens) == 0 {
		return nil
	}

	var ranked []Ranked
	for _, e := range entries {
		words := make(map[string]bool)
		for _, w := range Tokens(e.Paper.Title) {
			words[w] = true
		}
		for _, k := range e.Paper.Keywords {
			for _, w := range Tokens(k) {
				words[w] = true
			}
		}

		score := 0
		for _, t := range tokens {
			if words[t] {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, Ranked{CatalogEntry: e, Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
