package models

// Listing is the payload returned to the file picker for a search or browse call
type Listing struct {
	DynLoad   bool          `json:"dynload"`
	NoLogin   bool          `json:"nologin"`
	NoSearch  bool          `json:"nosearch"`
	NoRefresh bool          `json:"norefresh"`
	Manage    string        `json:"manage"`
	List      []interface{} `json:"list"`
	Path      []PathEntry   `json:"path"`
	Pages     int           `json:"pages"`
}

// FolderNode is a browsable folder entry of a listing
type FolderNode struct {
	Title     string        `json:"title"`
	Path      FolderID      `json:"path"`
	Thumbnail string        `json:"thumbnail"`
	Icon      string        `json:"icon"`
	Children  []interface{} `json:"children"`
}

// VideoNode is a selectable video entry of a listing
type VideoNode struct {
	ShortTitle     string `json:"shorttitle"`
	Title          string `json:"title"`
	MimeType       string `json:"mimetype"`
	ThumbnailTitle string `json:"thumbnail_title"`
	Thumbnail      string `json:"thumbnail"`
	Icon           string `json:"icon"`
	DateCreated    int64  `json:"datecreated"`
	DateModified   int64  `json:"datemodified"`
	Size           int64  `json:"size"`
	Dimensions     string `json:"dimensions"`
	Source         string `json:"source"`
	License        string `json:"license"`
	Author         string `json:"author"`
}

// PathEntry is one breadcrumb step, root first
type PathEntry struct {
	ID   FolderID `json:"path"`
	Name string   `json:"name"`
	Icon string   `json:"icon,omitempty"`
}
