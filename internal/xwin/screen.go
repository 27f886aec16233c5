package xwin

import (
	"fmt"
	"image"
	"image/color"

	mshm "github.com/BurntSushi/xgb/shm"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/gen2brain/shm"
)

// CopyScreen copies the screen pixels covered by region into a buffer of
// region's size with a zero origin. Parts of the region hanging off the
// screen stay transparent black. The copy goes through a shared-memory
// segment when MIT-SHM is available and falls back to a core-protocol
// GetImage otherwise.
func (c *Conn) CopyScreen(region image.Rectangle) (*image.RGBA, error) {
	if region.Dx() <= 0 || region.Dy() <= 0 {
		return nil, fmt.Errorf("invalid region %v", region)
	}
	screenRect := image.Rect(0, 0, int(c.screen.WidthInPixels), int(c.screen.HeightInPixels))
	visible := region.Intersect(screenRect)
	if visible.Empty() {
		return nil, fmt.Errorf("region %v is entirely off screen", region)
	}

	img := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))

	if c.shmOK {
		if err := c.copyScreenSHM(img, region, visible); err == nil {
			return img, nil
		} else {
			c.log.Debug().Err(err).Msg("shared-memory screen copy failed, using core protocol")
		}
	}
	if err := c.copyScreenCore(img, region, visible); err != nil {
		return nil, err
	}
	return img, nil
}

// copyScreenSHM reads the visible part of the screen through a shared
// memory segment, avoiding a round-trip of the pixel data through the X
// socket.
func (c *Conn) copyScreenSHM(img *image.RGBA, region, visible image.Rectangle) error {
	shmSize := visible.Dx() * visible.Dy() * 4
	shmID, err := shm.Get(shm.IPC_PRIVATE, shmSize, shm.IPC_CREAT|0777)
	if err != nil {
		return fmt.Errorf("failed to allocate shared memory: %w", err)
	}
	defer shm.Rm(shmID)

	data, err := shm.At(shmID, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to attach shared memory: %w", err)
	}
	defer shm.Dt(data)

	seg, err := mshm.NewSegId(c.conn)
	if err != nil {
		return fmt.Errorf("failed to allocate a segment id: %w", err)
	}
	mshm.Attach(c.conn, seg, uint32(shmID), false)
	defer mshm.Detach(c.conn, seg)

	_, err = mshm.GetImage(c.conn, xproto.Drawable(c.root),
		int16(visible.Min.X), int16(visible.Min.Y),
		uint16(visible.Dx()), uint16(visible.Dy()), 0xffffffff,
		byte(xproto.ImageFormatZPixmap), seg, 0).Reply()
	if err != nil {
		return fmt.Errorf("shared-memory GetImage failed: %w", err)
	}

	fillRegion(img, region, visible, data)
	return nil
}

// copyScreenCore reads the visible part of the screen with a plain
// GetImage request.
func (c *Conn) copyScreenCore(img *image.RGBA, region, visible image.Rectangle) error {
	reply, err := xproto.GetImage(c.conn, xproto.ImageFormatZPixmap, xproto.Drawable(c.root),
		int16(visible.Min.X), int16(visible.Min.Y),
		uint16(visible.Dx()), uint16(visible.Dy()), 0xffffffff).Reply()
	if err != nil {
		return fmt.Errorf("failed to read screen region %v: %w", visible, err)
	}
	fillRegion(img, region, visible, reply.Data)
	return nil
}

// fillRegion converts BGRA pixel rows covering visible into img, which
// holds region at a zero origin.
func fillRegion(img *image.RGBA, region, visible image.Rectangle, data []byte) {
	offset := 0
	for y := visible.Min.Y; y < visible.Max.Y; y++ {
		for x := visible.Min.X; x < visible.Max.X; x++ {
			if offset+3 >= len(data) {
				return
			}
			img.SetRGBA(x-region.Min.X, y-region.Min.Y, color.RGBA{
				R: data[offset+2],
				G: data[offset+1],
				B: data[offset],
				A: 255,
			})
			offset += 4
		}
	}
}
