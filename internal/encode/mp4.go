package encode

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os/exec"
	"strconv"
)

// ErrFFmpegNotFound is returned when MP4 output is requested and no ffmpeg
// binary can be found.
var ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")

// mp4Sink streams PNG frames into an ffmpeg process reading image2pipe.
type mp4Sink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	buf    *bufio.Writer
	stderr bytes.Buffer
	enc    png.Encoder
	frames int
	closed bool
}

// ffmpegArgs builds the ffmpeg command line. The input frame rate is the
// exact reciprocal of the frame delay; audio, when given, is muxed in and
// trimmed to the video.
func ffmpegArgs(path string, delayMs int, audio string) []string {
	if delayMs < 1 {
		delayMs = 1
	}
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "image2pipe",
		"-framerate", "1000/" + strconv.Itoa(delayMs),
		"-i", "-",
	}
	if audio != "" {
		args = append(args, "-i", audio, "-c:a", "aac", "-shortest")
	}
	return append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		// yuv420p needs even dimensions
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		path,
	)
}

func newMP4Sink(ctx context.Context, path string, opts Options) (*mp4Sink, error) {
	bin := opts.FFmpeg
	if bin == "" {
		bin = "ffmpeg"
	}
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}

	s := &mp4Sink{enc: png.Encoder{CompressionLevel: png.BestSpeed}}
	s.cmd = exec.CommandContext(ctx, resolved, ffmpegArgs(path, opts.DelayMs, opts.Audio)...)
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg stdin: %w", err)
	}
	if err := s.cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	s.stdin = stdin
	s.buf = bufio.NewWriterSize(stdin, 64*1024)
	return s, nil
}

func (s *mp4Sink) WriteFrame(img image.Image) error {
	if err := s.enc.Encode(s.buf, img); err != nil {
		return fmt.Errorf("failed to stream frame %d to ffmpeg: %w", s.frames, err)
	}
	s.frames++
	return nil
}

// Close flushes the pipe and waits for ffmpeg to finish writing the file.
func (s *mp4Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.buf.Flush()
	s.stdin.Close()
	waitErr := s.cmd.Wait()

	switch {
	case waitErr != nil:
		return fmt.Errorf("ffmpeg failed: %w: %s", waitErr, bytes.TrimSpace(s.stderr.Bytes()))
	case flushErr != nil:
		return fmt.Errorf("failed to stream frames to ffmpeg: %w", flushErr)
	case s.frames == 0:
		return ErrNoFrames
	}
	return nil
}
