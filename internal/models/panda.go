package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FolderID identifies a Panda folder. The empty value is the root folder.
type FolderID string

// RootFolder is the id used for "no parent".
const RootFolder FolderID = ""

// IsRoot reports whether the id refers to the root folder
func (id FolderID) IsRoot() bool {
	return id == RootFolder
}

// UnmarshalJSON accepts null, false and "" as the root folder.
func (id *FolderID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "false", `""`:
		*id = RootFolder
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid folder id %s: %w", data, err)
	}
	*id = FolderID(s)
	return nil
}

// Video is a video as returned by the Panda API
type Video struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	FolderID    FolderID `json:"folder_id"`
	Thumbnail   string   `json:"thumbnail"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	StorageSize int64    `json:"storage_size"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Playback    []string `json:"playback"`
	VideoPlayer string   `json:"video_player"`
}

// VideoList is the response of GET /videos
type VideoList struct {
	Videos []Video `json:"videos"`
	Pages  int     `json:"pages"`
}

// Folder is a folder as returned by the Panda API
type Folder struct {
	ID             FolderID `json:"id"`
	Name           string   `json:"name"`
	ParentFolderID FolderID `json:"parent_folder_id"`
}

// FolderList is the response of GET /folders
type FolderList struct {
	Folders []Folder `json:"folders"`
}

// OEmbed is the embed descriptor returned by GET /oembed
type OEmbed struct {
	Type         string `json:"type"`
	Version      string `json:"version"`
	Title        string `json:"title"`
	ProviderName string `json:"provider_name"`
	ProviderURL  string `json:"provider_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	HTML         string `json:"html"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// Analytics is the per-video summary served by the data host. The payload
// shape is not fixed by Panda, so it is kept as raw JSON.
type Analytics map[string]json.RawMessage

// Traffic is the bandwidth report of GET /analytics/traffic
type Traffic map[string]json.RawMessage
