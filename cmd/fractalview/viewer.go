package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/viewport"
)

const (
	historyShown     = 6
	historyTopMargin = 20
	historyDelay     = 800 * time.Millisecond
	resizeDebounce   = 500 * time.Millisecond

	minIterations = 10
	maxIterations = 5000
)

var (
	selectColor = color.RGBA{R: 0xff, G: 0x96, B: 0x4d, A: 0xff}
	background  = color.RGBA{A: 0xff}
)

// action is work that runs on the render goroutine, one at a time.
type action func(ctx context.Context) error

// viewer implements ebiten.Game. Update, Draw and Layout run on the game
// goroutine; everything that renders is queued to the render goroutine.
type viewer struct {
	ctx       context.Context
	nav       *viewport.Navigator
	binding   *viewport.Binding
	statePath string
	printer   *message.Printer

	actions chan action
	done    chan struct{}

	// pool is replaced by rebuild on the render goroutine.
	mu     sync.Mutex
	pool   *fractal.WorkerPool
	status string

	latest atomic.Pointer[fractal.Image]
	shown  *fractal.Image
	frame  *ebiten.Image
	thumbs map[uint64]*ebiten.Image

	// Layout size and the debounced size the scene is built for.
	width, height int
	resize        debouncer

	panning    bool
	panX, panY int
}

func newViewer(ctx context.Context, width, height int, c viewport.Controls, statePath string) (*viewer, error) {
	v := &viewer{
		ctx:       ctx,
		statePath: statePath,
		printer:   message.NewPrinter(language.English),
		actions:   make(chan action, 8),
		done:      make(chan struct{}),
		thumbs:    make(map[uint64]*ebiten.Image),
		width:     width,
		height:    height,
		resize:    newDebouncer(image.Pt(width, height), resizeDebounce),
	}

	scene, pool, err := buildScene(width, height, c)
	if err != nil {
		return nil, err
	}
	v.pool = pool
	v.binding = viewport.NewBinding(scene, pool)
	v.binding.OnPreview(func(img fractal.Image) {
		v.latest.Store(&img)
	})
	v.nav = viewport.NewNavigator(v.binding, c, viewport.WithRenderHook(v.rendered))

	go v.loop()
	v.do(v.nav.Render)
	return v, nil
}

func buildScene(width, height int, c viewport.Controls) (*fractal.Scene, *fractal.WorkerPool, error) {
	pool, err := fractal.NewWorkerPool(c.Threads)
	if err != nil {
		return nil, nil, err
	}
	scene, err := fractal.NewScene(width, height, c.Threads,
		fractal.WithPreviewInterval(c.PreviewInterval()))
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return scene, pool, nil
}

// loop runs queued actions until the context ends or close is called.
func (v *viewer) loop() {
	defer close(v.done)
	for {
		select {
		case <-v.ctx.Done():
			return
		case a, ok := <-v.actions:
			if !ok {
				return
			}
			if err := a(v.ctx); err != nil && !errors.Is(err, context.Canceled) {
				v.setStatus("error: " + err.Error())
			}
		}
	}
}

// do queues a. When the queue is full the request is dropped; the user can
// repeat it once the current render is done.
func (v *viewer) do(a action) {
	select {
	case v.actions <- a:
	default:
		v.setStatus("busy, request dropped")
	}
}

// rebuild replaces the scene and pool, as required for a new canvas size
// or worker count.
func (v *viewer) rebuild(width, height int, c viewport.Controls) error {
	if job := v.binding.Last(); job != nil {
		<-job.Done()
	}
	scene, pool, err := buildScene(width, height, c)
	if err != nil {
		return err
	}
	v.binding.Rebind(scene, pool)

	v.mu.Lock()
	old := v.pool
	v.pool = pool
	v.mu.Unlock()
	old.Close()

	fractal.Logger().Info("scene rebuilt", "width", width, "height", height, "threads", c.Threads)
	return nil
}

func (v *viewer) rendered(c viewport.Controls, elapsed time.Duration, err error) {
	if err != nil {
		return
	}
	w, h := v.binding.Size()
	v.setStatus(v.printer.Sprintf("rendered %d px in %v", w*h, elapsed.Round(time.Millisecond)))

	if v.statePath != "" {
		if err := os.WriteFile(v.statePath, []byte(viewport.EncodeControls(c)+"\n"), 0o644); err != nil {
			fractal.Logger().Warn("cannot save state", "path", v.statePath, "error", err)
		}
	}
}

func (v *viewer) setStatus(s string) {
	v.mu.Lock()
	v.status = s
	v.mu.Unlock()
}

func (v *viewer) getStatus() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// close stops the render goroutine and releases the pool.
func (v *viewer) close() {
	v.nav.StopAnimation()
	close(v.actions)
	<-v.done

	v.mu.Lock()
	pool := v.pool
	v.mu.Unlock()
	if job := v.binding.Last(); job != nil {
		<-job.Done()
	}
	pool.Close()
}

// Update implements ebiten.Game.
func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	v.handleResize()
	v.handleKeys()
	v.handleMouse()
	return nil
}

func (v *viewer) handleResize() {
	size, ok := v.resize.observe(image.Pt(v.width, v.height), time.Now())
	if !ok {
		return
	}
	v.nav.StopAnimation()
	v.do(func(ctx context.Context) error {
		if err := v.rebuild(size.X, size.Y, v.nav.Controls()); err != nil {
			return err
		}
		return v.nav.Render(ctx)
	})
}

// debouncer delays a size change until it has been stable for wait.
type debouncer struct {
	wait    time.Duration
	applied image.Point
	pending image.Point
	since   time.Time
}

func newDebouncer(size image.Point, wait time.Duration) debouncer {
	return debouncer{wait: wait, applied: size, pending: size}
}

// observe records the size seen at now. It returns the size to apply once a
// change has held for the wait period; the change is then applied and not
// reported again.
func (d *debouncer) observe(size image.Point, now time.Time) (image.Point, bool) {
	if size == d.applied {
		d.pending = size
		return image.Point{}, false
	}
	if size != d.pending {
		d.pending = size
		d.since = now
	}
	if now.Sub(d.since) < d.wait {
		return image.Point{}, false
	}
	d.applied = size
	return size, true
}

func (v *viewer) handleKeys() {
	c := v.nav.Controls()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyU):
		v.do(func(ctx context.Context) error {
			_, err := v.nav.Undo(ctx)
			return err
		})

	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		if v.nav.Animating() {
			v.nav.StopAnimation()
			return
		}
		v.do(v.nav.Animate)

	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		c.ColorThreads = !c.ColorThreads
		v.apply(c)

	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		c.ColorMode = c.ColorMode.Next()
		v.apply(c)

	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		c.Iterations = min(c.Iterations*2, maxIterations)
		v.apply(c)

	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		c.Iterations = max(c.Iterations/2, minIterations)
		v.apply(c)

	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		c.Threads = nextThreads(c.Threads)
		w, h := v.resize.applied.X, v.resize.applied.Y
		v.do(func(ctx context.Context) error {
			if err := v.rebuild(w, h, c); err != nil {
				return err
			}
			return v.nav.Apply(ctx, c)
		})

	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		v.do(func(context.Context) error {
			name := fmt.Sprintf("fractal-%s.png", time.Now().Format("20060102-150405"))
			if err := v.binding.Buffer().SavePNG(name); err != nil {
				return err
			}
			v.setStatus("saved " + name)
			return nil
		})

	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		fmt.Println(viewport.EncodeControls(c))

	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		v.nav.CancelSelect()
	}
}

func (v *viewer) apply(c viewport.Controls) {
	v.do(func(ctx context.Context) error {
		return v.nav.Apply(ctx, c)
	})
}

// nextThreads returns the worker count after n in ThreadChoices.
func nextThreads(n int) int {
	for i, t := range viewport.ThreadChoices {
		if t > n {
			return viewport.ThreadChoices[i]
		}
	}
	return viewport.ThreadChoices[0]
}

func (v *viewer) handleMouse() {
	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if n, ok := v.historyHit(x, y); ok {
			v.do(func(ctx context.Context) error {
				return v.nav.Restore(ctx, n, historyDelay)
			})
			return
		}
		v.nav.BeginSelect(fx, fy)
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		v.nav.MoveSelect(fx, fy)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if box, ok := v.nav.Selection(); ok {
			v.nav.CancelSelect()
			v.do(func(ctx context.Context) error {
				_, err := v.nav.Zoom(ctx, box)
				return err
			})
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		v.panning = true
		v.panX, v.panY = x, y
	}
	if v.panning && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		v.panning = false
		dx, dy := float64(x-v.panX), float64(y-v.panY)
		if dx != 0 || dy != 0 {
			v.do(func(ctx context.Context) error {
				return v.nav.Pan(ctx, dx, dy)
			})
		}
	}
}

// historyHit returns how many entries to undo for a click at (x, y) on the
// history strip.
func (v *viewer) historyHit(x, y int) (int, bool) {
	entries := v.nav.History()
	if len(entries) == 0 || entries[0].Thumbnail == nil {
		return 0, false
	}
	return historyIndex(x, y, v.width, entries[0].Thumbnail.Bounds().Size(), len(entries))
}

// historyIndex maps a click to a history slot. The strip is right-aligned
// on a canvas width wide, starts at historyTopMargin and stacks up to
// historyShown thumbnails of size thumb, newest first. Slot 1 is the newest.
func historyIndex(x, y, width int, thumb image.Point, entries int) (int, bool) {
	if thumb.X <= 0 || thumb.Y <= 0 || entries <= 0 {
		return 0, false
	}
	if x < width-thumb.X || x >= width || y < historyTopMargin {
		return 0, false
	}
	n := (y-historyTopMargin)/thumb.Y + 1
	if n > min(entries, historyShown) {
		return 0, false
	}
	return n, true
}

// Draw implements ebiten.Game.
func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	if img := v.latest.Load(); img != nil && img != v.shown {
		if v.frame == nil || v.frame.Bounds().Dx() != img.Width || v.frame.Bounds().Dy() != img.Height {
			v.frame = ebiten.NewImage(img.Width, img.Height)
		}
		v.frame.WritePixels(img.Pix)
		v.shown = img
	}
	if v.frame != nil {
		op := &ebiten.DrawImageOptions{}
		if v.panning {
			x, y := ebiten.CursorPosition()
			op.GeoM.Translate(float64(x-v.panX), float64(y-v.panY))
		}
		screen.DrawImage(v.frame, op)
	}

	if box, ok := v.nav.Selection(); ok {
		x, y := box.Min()
		vector.StrokeRect(screen, float32(x), float32(y), float32(box.Width()), float32(box.Height()),
			1, selectColor, false)
	}

	v.drawHistory(screen)

	c := v.nav.Controls()
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"scale %.6g  center (%.10g, %.10g)\niterations %d  %s  threads %d\nhistory %d/%d\n%s\nTPS %.0f",
		c.Scale, -c.OffsetX, -c.OffsetY,
		c.Iterations, c.ColorMode, c.Threads,
		len(v.nav.History()), v.nav.HistoryDepth(),
		v.getStatus(), ebiten.ActualTPS()))
}

func (v *viewer) drawHistory(screen *ebiten.Image) {
	entries := v.nav.History()
	live := make(map[uint64]bool, len(entries))

	for i, e := range entries {
		if i == historyShown {
			break
		}
		if e.Thumbnail == nil {
			continue
		}
		live[e.Seq] = true
		img, ok := v.thumbs[e.Seq]
		if !ok {
			img = ebiten.NewImageFromImage(e.Thumbnail)
			v.thumbs[e.Seq] = img
		}
		b := e.Thumbnail.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(v.width-b.Dx()), float64(historyTopMargin+i*b.Dy()))
		screen.DrawImage(img, op)
	}

	for seq, img := range v.thumbs {
		if !live[seq] {
			img.Deallocate()
			delete(v.thumbs, seq)
		}
	}
}

// Layout implements ebiten.Game. The canvas always fills the window; a
// size change is applied by handleResize once it settles.
func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.width, v.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
