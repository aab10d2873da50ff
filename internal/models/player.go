package models

// VideoView carries the viewer state used to parametrize an embed
type VideoView struct {
	ID          int64  `json:"id"`
	CurrentTime int    `json:"currenttime"`
	VideoMap    string `json:"videomap"`
}

// EmbedContext is the data handed to the embed template
type EmbedContext struct {
	VideoPlayer     string  `json:"video_player"`
	ViewID          int64   `json:"pandavideoview_id"`
	Ratio           float64 `json:"ratio"`
	ShowVideoMap    bool    `json:"showvideomap"`
	VideoMapData    string  `json:"videomap_data"`
	ViewCurrentTime *int    `json:"pandavideoview_currenttime,omitempty"`
}
