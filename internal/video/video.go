// Package video writes composited carousel frames either into ffmpeg or as a
// numbered PNG sequence.
package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// Params describes the output stream.
type Params struct {
	Width, Height int
	FPS           int
	Encoder       string // ffmpeg encoder name, e.g. from system.GetBestH264Encoder
	Quality       int    // 0 picks DefaultQuality(Encoder)
}

// FrameWriter consumes frames in presentation order.
type FrameWriter interface {
	WriteFrame(img image.Image) error
	Close() error
}

// VideoEncoder opens a frame stream into path.
type VideoEncoder interface {
	Open(ctx context.Context, path string, params Params) (FrameWriter, error)
}

// DefaultQuality matches the encoder's own scale.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // битрейт = Q*100 кбит/с
	case "h264_nvenc":
		return 28
	default:
		return 23 // CRF x264
	}
}

type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Open(ctx context.Context, path string, params Params) (FrameWriter, error) {
	if params.Width <= 0 || params.Height <= 0 || params.FPS <= 0 {
		return nil, fmt.Errorf("invalid stream %dx%d @ %d fps", params.Width, params.Height, params.FPS)
	}
	if params.Encoder == "" {
		params.Encoder = "libx264"
	}
	if params.Quality == 0 {
		params.Quality = DefaultQuality(params.Encoder)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", buildFFmpegArgs(path, params)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return &ffmpegStream{cmd: cmd, stdin: stdin, log: &out, params: params}, nil
}

func buildFFmpegArgs(path string, params Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", params.Encoder,
	}
	args = append(args, qualityArgs(params.Encoder, params.Quality)...)
	return append(args, path)
}

// Качество в зависимости от энкодера
func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	log    *bytes.Buffer
	params Params
	frames int
}

func (s *ffmpegStream) WriteFrame(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != s.params.Width || b.Dy() != s.params.Height {
		return fmt.Errorf("frame %d is %dx%d, stream is %dx%d", s.frames, b.Dx(), b.Dy(), s.params.Width, s.params.Height)
	}
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	s.frames++
	return nil
}

func (s *ffmpegStream) Close() error {
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, s.log.String())
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	// Только плотный RGBA с началом в (0,0) можно отдать как есть
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// PNGSequence writes frame_00001.png, frame_00002.png, ... into Dir.
type PNGSequence struct {
	Dir    string
	frames int
}

func NewPNGSequence(dir string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGSequence{Dir: dir}, nil
}

func (p *PNGSequence) WriteFrame(img image.Image) error {
	p.frames++
	f, err := os.Create(filepath.Join(p.Dir, fmt.Sprintf("frame_%05d.png", p.frames)))
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode frame %d: %w", p.frames, err)
	}
	return f.Close()
}

// Frames is the number of frames written so far.
func (p *PNGSequence) Frames() int {
	return p.frames
}

func (p *PNGSequence) Close() error {
	return nil
}
