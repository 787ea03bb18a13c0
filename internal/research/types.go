package research

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Capability names as exposed by the provider's tools/call
const (
	CapSearchPapers             = "search_papers"
	CapGenerateWorkspace        = "generate_workspace"
	CapCreateMindmap            = "create_mindmap"
	CapCreateInteractiveMindmap = "create_interactive_mindmap"
	CapGenerateSummaries        = "generate_comprehensive_summaries"
	CapGenerateIEEECitations    = "generate_ieee_citations"
	CapGenerateSamplePaper      = "generate_sample_paper"
	CapSynthesizeAudio          = "synthesize_audio"
)

// Capabilities lists every capability in a stable order
var Capabilities = []string{
	CapSearchPapers,
	CapGenerateWorkspace,
	CapCreateMindmap,
	CapCreateInteractiveMindmap,
	CapGenerateSummaries,
	CapGenerateIEEECitations,
	CapGenerateSamplePaper,
	CapSynthesizeAudio,
}

// Argument defaults
const (
	DefaultMaxResults = 10
	DefaultDepth      = 3
	DefaultFormat     = "ieee"
	DefaultVoice      = "neutral"
)

// DefaultSources is used when neither the call nor the client names sources
var DefaultSources = []string{"arxiv", "scholar"}

// Bool returns a pointer to v, for the optional flags of the argument structs
func Bool(v bool) *bool {
	return &v
}

func boolOr(p *bool, def bool) *bool {
	if p == nil {
		return Bool(def)
	}
	return p
}

// SearchArgs are the arguments of search_papers
type SearchArgs struct {
	Query      string   `json:"query"`
	MaxResults int      `json:"max_results"`
	Sources    []string `json:"sources"`
}

func (a SearchArgs) WithDefaults(sources []string, maxResults int) SearchArgs {
	if a.MaxResults <= 0 {
		a.MaxResults = maxResults
	}
	if a.MaxResults <= 0 {
		a.MaxResults = DefaultMaxResults
	}
	if len(a.Sources) == 0 {
		a.Sources = sources
	}
	if len(a.Sources) == 0 {
		a.Sources = DefaultSources
	}
	return a
}

// WorkspaceArgs are the arguments of generate_workspace
type WorkspaceArgs struct {
	Topic        string `json:"topic"`
	IncludeTools *bool  `json:"include_tools"`
	IncludeFiles *bool  `json:"include_files"`
}

func (a WorkspaceArgs) WithDefaults() WorkspaceArgs {
	a.IncludeTools = boolOr(a.IncludeTools, true)
	a.IncludeFiles = boolOr(a.IncludeFiles, true)
	return a
}

// MindmapArgs are the arguments of create_mindmap
type MindmapArgs struct {
	Topic              string `json:"topic"`
	Depth              int    `json:"depth"`
	IncludeConnections *bool  `json:"include_connections"`
}

func (a MindmapArgs) WithDefaults() MindmapArgs {
	if a.Depth <= 0 {
		a.Depth = DefaultDepth
	}
	a.IncludeConnections = boolOr(a.IncludeConnections, true)
	return a
}

// InteractiveMindmapArgs are the arguments of create_interactive_mindmap.
// Papers is not sent to the provider; the fallback uses it for concepts and authors.
type InteractiveMindmapArgs struct {
	Topic              string  `json:"topic"`
	Depth              int     `json:"depth"`
	IncludeConnections *bool   `json:"include_connections"`
	IncludeAuthors     *bool   `json:"include_authors"`
	Papers             []Paper `json:"-"`
}

func (a InteractiveMindmapArgs) WithDefaults() InteractiveMindmapArgs {
	if a.Depth <= 0 {
		a.Depth = DefaultDepth
	}
	a.IncludeConnections = boolOr(a.IncludeConnections, true)
	a.IncludeAuthors = boolOr(a.IncludeAuthors, true)
	return a
}

// SummariesArgs are the arguments of generate_comprehensive_summaries
type SummariesArgs struct {
	Topic  string  `json:"topic"`
	Papers []Paper `json:"papers"`
}

func (a SummariesArgs) WithDefaults() SummariesArgs {
	if a.Papers == nil {
		a.Papers = []Paper{}
	}
	return a
}

// CitationArgs are the arguments of generate_ieee_citations
type CitationArgs struct {
	Papers []Paper `json:"papers"`
	Format string  `json:"format"`
}

func (a CitationArgs) WithDefaults() CitationArgs {
	if a.Papers == nil {
		a.Papers = []Paper{}
	}
	if a.Format == "" {
		a.Format = DefaultFormat
	}
	return a
}

// SamplePaperArgs are the arguments of generate_sample_paper
type SamplePaperArgs struct {
	Topic  string  `json:"topic"`
	Papers []Paper `json:"papers"`
}

func (a SamplePaperArgs) WithDefaults() SamplePaperArgs {
	if a.Papers == nil {
		a.Papers = []Paper{}
	}
	return a
}

// AudioArgs are the arguments of synthesize_audio
type AudioArgs struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

func (a AudioArgs) WithDefaults() AudioArgs {
	if a.Voice == "" {
		a.Voice = DefaultVoice
	}
	return a
}

// PaperID identifies a paper. Providers send numbers or strings; both decode.
type PaperID string

// UnmarshalJSON implements json.Unmarshaler
func (id *PaperID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PaperID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = PaperID(n.String())
	return nil
}

// PaperIDFromInt formats a numeric id
func PaperIDFromInt(n int) PaperID {
	return PaperID(strconv.Itoa(n))
}

// Paper is one search hit, also the input of the paper-based capabilities
type Paper struct {
	ID             PaperID  `json:"id"`
	Title          string   `json:"title"`
	Authors        []string `json:"authors"`
	Abstract       string   `json:"abstract"`
	Year           int      `json:"year"`
	Journal        string   `json:"journal"`
	Citations      int      `json:"citations"`
	RelevanceScore int      `json:"relevance_score"`
	Keywords       []string `json:"keywords"`
	URL            string   `json:"url,omitempty"`
}

// SearchResult is the payload of search_papers
type SearchResult struct {
	Papers      []Paper  `json:"papers"`
	TotalFound  int      `json:"total_found"`
	Query       string   `json:"query"`
	SourcesUsed []string `json:"sources_used"`
}

// WorkspaceTool is a tool slot of a workspace
type WorkspaceTool struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// WorkspaceFile is a file or folder of a workspace
type WorkspaceFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size string `json:"size"`
}

// Workspace is the payload of generate_workspace
type Workspace struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	CreatedAt     string          `json:"created_at"`
	Tools         []WorkspaceTool `json:"tools"`
	Files         []WorkspaceFile `json:"files"`
	Collaborators int             `json:"collaborators"`
	LastActivity  string          `json:"last_activity"`
}

// MindMapNode is a node of a plain mind map
type MindMapNode struct {
	ID    int     `json:"id"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Type  string  `json:"type"`
}

// MindMapEdge links two mind map nodes by id
type MindMapEdge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// MindMap is the payload of create_mindmap
type MindMap struct {
	ID          string        `json:"id"`
	Topic       string        `json:"topic"`
	Nodes       []MindMapNode `json:"nodes"`
	Connections []MindMapEdge `json:"connections"`
}

// InteractiveNode is a node of an interactive mind map
type InteractiveNode struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Type        string  `json:"type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Description string  `json:"description,omitempty"`
}

// InteractiveEdge is a typed link between interactive nodes
type InteractiveEdge struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Type     string  `json:"type"`
	Label    string  `json:"label,omitempty"`
	Strength float64 `json:"strength,omitempty"`
}

// NodeStyle is the rendering hint for one node type
type NodeStyle struct {
	Color string `json:"color"`
	Size  string `json:"size"`
}

// InteractiveMindMap is the payload of create_interactive_mindmap
type InteractiveMindMap struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Topic               string               `json:"topic"`
	Nodes               []InteractiveNode    `json:"nodes"`
	Connections         []InteractiveEdge    `json:"connections"`
	NodeTypes           map[string]NodeStyle `json:"node_types"`
	InteractionFeatures map[string]bool      `json:"interaction_features"`
	CreatedAt           string               `json:"created_at"`
}

// DocumentSummary summarizes one paper
type DocumentSummary struct {
	PaperID     PaperID  `json:"paper_id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	KeyFindings []string `json:"key_findings"`
	Relevance   int      `json:"relevance"`
}

// Summaries is the payload of generate_comprehensive_summaries
type Summaries struct {
	ID                string            `json:"id"`
	Query             string            `json:"query"`
	TopicOverview     string            `json:"topic_overview"`
	KeyThemes         []string          `json:"key_themes"`
	DocumentSummaries []DocumentSummary `json:"document_summaries"`
	ResearchGaps      []string          `json:"research_gaps"`
	Synthesis         string            `json:"synthesis,omitempty"`
	CreatedAt         string            `json:"created_at"`
}

// Citation is one numbered reference
type Citation struct {
	Number   int     `json:"number"`
	PaperID  PaperID `json:"paper_id"`
	Citation string  `json:"citation"`
	Style    string  `json:"style"`
}

// CitationFormats renders one reference in several styles
type CitationFormats struct {
	Number int    `json:"number"`
	IEEE   string `json:"ieee"`
	BibTeX string `json:"bibtex"`
	APA    string `json:"apa"`
	MLA    string `json:"mla"`
}

// Citations is the payload of generate_ieee_citations
type Citations struct {
	ID             string            `json:"id"`
	Style          string            `json:"style"`
	TotalCitations int               `json:"total_citations"`
	Citations      []Citation        `json:"citations"`
	Bibliography   string            `json:"bibliography"`
	Formats        []CitationFormats `json:"formats,omitempty"`
	CreatedAt      string            `json:"created_at"`
}

// Subsection is a titled block inside a section
type Subsection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Section is one section of a sample paper
type Section struct {
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Subsections []Subsection `json:"subsections,omitempty"`
}

// SamplePaper is the payload of generate_sample_paper
type SamplePaper struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Abstract        string             `json:"abstract"`
	Keywords        []string           `json:"keywords,omitempty"`
	Sections        map[string]Section `json:"sections"`
	ReferencesCount int                `json:"references_count"`
	References      []string           `json:"references,omitempty"`
	WordCount       int                `json:"word_count"`
	CreatedAt       string             `json:"created_at"`
}

// Audio is the payload of synthesize_audio
type Audio struct {
	AudioURL string  `json:"audio_url"`
	Duration float64 `json:"duration"`
	Voice    string  `json:"voice"`
	Text     string  `json:"text"`
}
