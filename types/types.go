package types

import (
	"golang.org/x/net/html"
)

// ResourceRole - Kind of reference a resource was collected from
type ResourceRole string

const (
	RoleImage      ResourceRole = "image"
	RoleStylesheet ResourceRole = "stylesheet"
	RoleScript     ResourceRole = "script"
	RoleLinkedPage ResourceRole = "linked_page"
)

// ResourceReference - One same-origin resource reference found in the page.
// Node is the handle into the parsed tree used for the deferred attribute
// rewrite; the tree is never mutated during scanning.
type ResourceReference struct {
	OriginalURL   string
	AbsoluteURL   string
	Role          ResourceRole
	LocalFileName string
	// LocalPath is the value written into the markup on success:
	// "<resourcesDirName>/<LocalFileName>".
	LocalPath string
	Node      *html.Node
	Attr      string
}

// DownloadOutcome - Result of one resource download. Err is nil on success.
type DownloadOutcome struct {
	Reference *ResourceReference
	Err       error
}

// Success reports whether the resource was downloaded and saved.
func (o DownloadOutcome) Success() bool {
	return o.Err == nil
}

// PageResult - Result of a whole page download
type PageResult struct {
	HTMLPath     string
	ResourcesDir string
	// FailedResources lists the absolute URLs of resources that could not be
	// downloaded. Those references keep their original URLs in the saved page.
	FailedResources []string
}
