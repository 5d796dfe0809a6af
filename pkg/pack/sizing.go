package pack

import (
	"math"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/geom"
)

// growStep is the number of pixels added to a dimension per retry when
// power-of-two sizing is off. Even, so sizes stay even.
const growStep = 2

// Result is a completed packing session.
type Result struct {
	Size     geom.Size
	Pieces   []Piece
	Attempts []geom.Size // every size tried, in order
}

// Controller searches for the smallest atlas size the packer can fill
// with every sprite.
type Controller struct {
	Options

	// Logger receives one debug line per attempt. Optional.
	Logger *log.Logger

	// OnAttempt is called before each session with its size. Optional.
	OnAttempt func(size geom.Size)
}

// NewController returns a controller for opts.
func NewController(opts Options) *Controller {
	return &Controller{Options: opts}
}

// Pack places sprites, in the given order, using p.
//
// A sprite too large for MaxSize on its own is rejected up front with an
// INPUT_REJECTED error. Otherwise the controller grows the atlas after
// every failed session until all sprites fit, or returns a
// *SizeExceededError once a dimension passes MaxSize.
func (c *Controller) Pack(sprites []Sprite, p Packer) (*Result, error) {
	limit := c.maxSize()
	border2 := 2 * c.Border

	if err := c.precheck(sprites, p, limit); err != nil {
		return nil, err
	}

	var area float64
	var maxFoot geom.Size
	for _, s := range sprites {
		area += float64(footprint(s.Size(), c.Padding).Area())
		maxFoot = maxFoot.Max(c.solo(p, s.Size()))
	}

	res := &Result{}
	if len(sprites) == 0 {
		res.Size = geom.Size{Width: border2, Height: border2}
		res.Attempts = []geom.Size{res.Size}
		p.SetSize(res.Size)
		return res, nil
	}

	size := c.calcSize(area, maxFoot)
	for {
		if size.Width > limit || size.Height > limit {
			se := &SizeExceededError{Needed: size, Max: limit, Attempts: len(res.Attempts)}
			if n := len(res.Attempts); n > 0 {
				se.Best = res.Attempts[n-1]
			}
			return nil, se
		}

		res.Attempts = append(res.Attempts, size)
		if c.OnAttempt != nil {
			c.OnAttempt(size)
		}

		p.SetSize(size)
		failed := -1
		for i, s := range sprites {
			if !p.Add(s) {
				failed = i
				break
			}
		}

		if failed < 0 {
			res.Size = size
			res.Pieces = p.Pieces()
			if c.Logger != nil {
				c.Logger.Debug("packed", "packer", p.Name(), "size", size, "attempts", len(res.Attempts))
			}
			return res, nil
		}

		for _, s := range sprites[failed:] {
			area += float64(footprint(s.Size(), c.Padding).Area())
		}
		next := c.calcSize(area, maxFoot).Max(size)
		next = c.grow(next)

		if c.Logger != nil {
			c.Logger.Debug("placement failed, growing atlas",
				"packer", p.Name(),
				"size", size,
				"placed", failed,
				"total", len(sprites),
				"next", next)
		}
		size = next
	}
}

// precheck rejects any sprite that p could not place even alone in a
// limit x limit atlas. The bound is the packer's: the tree packer reserves
// trailing padding with every piece, the scan packer does not.
func (c *Controller) precheck(sprites []Sprite, p Packer, limit int) error {
	for _, s := range sprites {
		need := c.solo(p, s.Size()).Grow(2 * c.Border)
		if need.Width > limit || need.Height > limit {
			cause := &SizeExceededError{Needed: need, Max: limit}
			return apperr.Wrap(apperr.ErrCodeInputRejected, cause,
				"sprite %q (%s) cannot fit in a %dx%d atlas", s.ID(), s.Size(), limit, limit)
		}
	}
	return nil
}

// solo is the interior space p needs for a sprite of size s on its own.
func (c *Controller) solo(p Packer, s geom.Size) geom.Size {
	if ss, ok := p.(soloSizer); ok {
		return ss.soloSize(s)
	}
	return footprint(s, c.Padding)
}

// calcSize estimates a square-ish atlas holding area pixels, at least as
// large as the biggest footprint, plus the border.
func (c *Controller) calcSize(area float64, maxFoot geom.Size) geom.Size {
	side := int(math.Ceil(math.Sqrt(area)))
	border2 := 2 * c.Border
	w := max(side, maxFoot.Width) + border2
	h := max(side, maxFoot.Height) + border2

	if c.PowerOfTwo {
		w = geom.NextPow2(w)
		inner := max(w-border2, 1)
		h = geom.NextPow2(max(int(math.Ceil(area/float64(inner)))+border2, maxFoot.Height+border2))
		return geom.Size{Width: w, Height: h}
	}
	return geom.Size{Width: w + w%2, Height: h + h%2}
}

// grow enlarges the larger dimension (width on ties).
func (c *Controller) grow(s geom.Size) geom.Size {
	if c.PowerOfTwo {
		if s.Width >= s.Height {
			s.Width *= 2
		} else {
			s.Height *= 2
		}
		return s
	}
	if s.Width >= s.Height {
		s.Width += growStep
	} else {
		s.Height += growStep
	}
	return s
}
