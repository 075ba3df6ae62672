package debug

// CompileData summarises one compilation of text into reveal events.
type CompileData struct {
	TextLength    int `json:"text_length"`
	Runes         int `json:"runes"`
	Budget        int `json:"budget"`
	Events        int `json:"events"`
	Chars         int `json:"chars"`
	Breaks        int `json:"breaks"`
	Continuations int `json:"continuations"`
	AutoWraps     int `json:"auto_wraps"`
}

// StepData describes one observable engine step.
type StepData struct {
	Step      int       `json:"step"`
	Rune      rune      `json:"rune,omitempty"`
	Active    int       `json:"active"`
	Remaining int       `json:"remaining"`
	Lines     [3]string `json:"lines"`
	Evicted   string    `json:"evicted,omitempty"` // top line discarded by a shift
}

// FrameData contains information about a rasterised frame.
type FrameData struct {
	Index     int   `json:"index"`
	Width     int   `json:"width"`
	Height    int   `json:"height"`
	Markers   int   `json:"markers"` // lines drawn with a leading speaker marker
	ElapsedUs int64 `json:"elapsed_us"`
}

// EncodeFrameData contains information about one frame handed to an encoder.
type EncodeFrameData struct {
	Index   int    `json:"index"`
	Format  string `json:"format"`
	DelayMs int    `json:"delay_ms"`
}

// EncodeDoneData contains information about a finished encode.
type EncodeDoneData struct {
	Format    string `json:"format"`
	Output    string `json:"output"`
	Frames    int    `json:"frames"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// BatchJobData contains the outcome of one batch job.
type BatchJobData struct {
	Name      string `json:"name"`
	Output    string `json:"output"`
	Frames    int    `json:"frames"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// OptionsData contains the effective reveal options.
type OptionsData struct {
	Budget       int  `json:"budget"`
	Speaker      *int `json:"speaker,omitempty"`
	Continuation *int `json:"continuation,omitempty"`
	ForcedBreak  *int `json:"forced_break,omitempty"`
	SpeedMs      int  `json:"speed_ms"`
	Audio        bool `json:"audio"`
}

// ErrorData contains error information.
type ErrorData struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}
