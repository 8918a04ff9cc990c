// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package process

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/corpus/core"
)

// RenderDocument converts stored raw content into the plain text form that
// gets chunked and indexed. Dispatch is a closed switch on the source type;
// a source type without a renderer is rejected, never silently passed
// through.
func RenderDocument(source core.SourceType, content []byte) (string, error) {
	switch source {
	case core.SourceTypeChat:
		return renderChat(content)
	case core.SourceTypeWiki:
		return renderWiki(content)
	case core.SourceTypePDF:
		return renderPDF(content)
	case core.SourceTypeMarkdown, core.SourceTypeText:
		return renderText(content)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}
}

// renderChat formats a thread as a conversation transcript. The header
// carries the thread's identity and participants, and each message keeps
// its origin timestamp and author, so retrieval hits can cite who said
// what, when.
func renderChat(content []byte) (string, error) {
	var thread core.ChatThread
	if err := json.Unmarshal(content, &thread); err != nil {
		return "", fmt.Errorf("%w: chat thread: %w", ErrRenderFailed, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Chat conversation: #%s\n", thread.ChannelName)
	fmt.Fprintf(&b, "Thread ID: %s\n", thread.ThreadID)
	fmt.Fprintf(&b, "Participants: %s\n\n", strings.Join(thread.Participants, ", "))
	for _, msg := range thread.Messages {
		name := msg.UserName
		if name == "" {
			name = msg.UserID
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", msg.Timestamp, name, msg.Text)
	}
	return b.String(), nil
}

// renderWiki prefixes the page body with its identifying header so chunks
// cut from anywhere in the page still begin a window near title context.
func renderWiki(content []byte) (string, error) {
	var page core.WikiPage
	if err := json.Unmarshal(content, &page); err != nil {
		return "", fmt.Errorf("%w: wiki page: %w", ErrRenderFailed, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", page.Title)
	fmt.Fprintf(&b, "Space: %s\n", page.SpaceKey)
	if page.Path != "" {
		fmt.Fprintf(&b, "Path: %s\n", page.Path)
	}
	if page.LastUpdated != "" {
		fmt.Fprintf(&b, "Last updated: %s\n", page.LastUpdated)
	}
	b.WriteString("\n")
	b.WriteString(page.Content)
	return b.String(), nil
}

// renderPDF joins extracted pages with page markers, preserving page
// numbers for attribution.
func renderPDF(content []byte) (string, error) {
	var doc core.PDFDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: pdf document: %w", ErrRenderFailed, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Filename)
	for _, page := range doc.Pages {
		fmt.Fprintf(&b, "--- Page %d ---\n%s\n\n", page.Page, page.Text)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// renderText unwraps an uploaded text document. Content stored before the
// structured schema existed is plain text; it passes through unchanged.
func renderText(content []byte) (string, error) {
	var doc core.TextDocument
	if err := json.Unmarshal(content, &doc); err == nil && doc.Content != "" {
		return doc.Content, nil
	}
	return string(content), nil
}
