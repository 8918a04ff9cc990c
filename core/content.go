package core

// Raw content schemas shared between the source ingestors (which write them)
// and the document processor (which renders them). These are the structured
// forms stored in the raw data layer; the original payloads from each origin
// are normalized into these shapes at ingestion time.

// ChatMessage is a single message inside a chat thread.
type ChatMessage struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"` // RFC 3339, origin clock
}

// ChatThread is one threaded conversation captured from a chat platform.
type ChatThread struct {
	ThreadID     string        `json:"thread_id"`
	ChannelID    string        `json:"channel_id"`
	ChannelName  string        `json:"channel_name"`
	Participants []string      `json:"participants,omitempty"`
	MessageCount int           `json:"message_count"`
	Messages     []ChatMessage `json:"messages"`
}

// WikiPage is one page captured from a wiki.
type WikiPage struct {
	PageID      string `json:"page_id"`
	Title       string `json:"title"`
	SpaceKey    string `json:"space_key"`
	Path        string `json:"hierarchy_path,omitempty"` // "Engineering / Backend / API"
	Author      string `json:"author,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"` // RFC 3339, origin clock
	Version     int    `json:"version,omitempty"`
	URL         string `json:"url,omitempty"`
	Content     string `json:"content"` // cleaned text, markup already stripped
}

// PDFInfo carries document-level metadata extracted from a PDF.
type PDFInfo struct {
	Title   string `json:"title,omitempty"`
	Author  string `json:"author,omitempty"`
	Subject string `json:"subject,omitempty"`
	Creator string `json:"creator,omitempty"`
}

// PDFPage is the extracted text of a single PDF page.
type PDFPage struct {
	Page int    `json:"page"` // 1-based
	Text string `json:"text"`
}

// PDFDocument is the structured extraction of an uploaded PDF.
type PDFDocument struct {
	Filename   string    `json:"filename"`
	TotalPages int       `json:"total_pages"`
	Info       PDFInfo   `json:"pdf_metadata"`
	Pages      []PDFPage `json:"pages"`
}

// TextDocument is an uploaded plain text or markdown file.
type TextDocument struct {
	Filename  string `json:"filename"`
	Content   string `json:"content"`
	LineCount int    `json:"line_count"`
	CharCount int    `json:"char_count"`
}
