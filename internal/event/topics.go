package event

import "github.com/dshills/folio/internal/event/topic"

// Document topics.
const (
	// TopicContentChanged is published by the editing surface after every
	// edit to a page. The payload is the edited *pagination.Page.
	TopicContentChanged topic.Topic = "page.content.changed"

	// TopicPageCreated is published when a page is inserted.
	TopicPageCreated topic.Topic = "page.created"

	// TopicDocumentReset is published when the document is reset or loaded.
	TopicDocumentReset topic.Topic = "document.reset"
)

// Selection topics.
const (
	// TopicSelectionCaptured is published after a snapshot is stored.
	TopicSelectionCaptured topic.Topic = "selection.captured"
)

// Resize topics.
const (
	// TopicResizeStarted is published when a drag begins on a handle.
	TopicResizeStarted topic.Topic = "resize.started"

	// TopicResizeEnded is published when a drag ends.
	TopicResizeEnded topic.Topic = "resize.ended"
)
