package scene

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/poolsynth/pkg/config"
)

// Name fragments used to classify discovered children.
const (
	BallMarker   = "ball_"
	PocketMarker = "pocket"
)

// Child is a named object found in the host scene.
type Child struct {
	Name     string
	Position mgl64.Vec3
}

// Discoverer enumerates the children of a scene.
type Discoverer interface {
	Children() []Child
}

// Registry is the typed view of a scene's children. Balls and pockets keep
// discovery order; that order fixes the class ids.
type Registry struct {
	Balls   []Ball
	Pockets []Pocket
}

// NewRegistry partitions children into balls (name contains "ball_") and
// pockets (name contains "pocket"). Other children are ignored. Balls start
// visible with identity rotation.
func NewRegistry(children []Child) Registry {
	var reg Registry
	for _, c := range children {
		switch {
		case strings.Contains(c.Name, BallMarker):
			reg.Balls = append(reg.Balls, Ball{
				ID:       len(reg.Balls),
				Name:     c.Name,
				Position: c.Position,
				Rotation: mgl64.QuatIdent(),
				Visible:  true,
			})
		case strings.Contains(c.Name, PocketMarker):
			reg.Pockets = append(reg.Pockets, Pocket{
				ID:       len(reg.Pockets),
				Name:     c.Name,
				Position: c.Position,
			})
		}
	}
	return reg
}

// ClassNames returns the detector class names: one per ball, then "pocket".
func (r Registry) ClassNames() []string {
	names := make([]string, 0, len(r.Balls)+1)
	for _, b := range r.Balls {
		names = append(names, b.Name)
	}
	return append(names, PocketMarker)
}

// StaticChildren is a fixed child list.
type StaticChildren []Child

// Children implements Discoverer.
func (s StaticChildren) Children() []Child { return s }

// StandardTable lays out cfg.Ball.Count balls in a row along the table's
// center line and six pockets at the corners and the middle of the long
// rails. Ball positions are placeholders until the first placement.
func StandardTable(cfg config.Config) StaticChildren {
	h := cfg.Table.Height
	hx, hz := cfg.Table.Length/2, cfg.Table.Width/2

	children := make(StaticChildren, 0, cfg.Ball.Count+6)
	for i := range cfg.Ball.Count {
		children = append(children, Child{
			Name:     fmt.Sprintf("ball_%d", i),
			Position: mgl64.Vec3{-hx + float64(i+1)*cfg.Table.Length/float64(cfg.Ball.Count+1), h, 0},
		})
	}

	pockets := []struct {
		name string
		x, z float64
	}{
		{"pocket_corner_nw", -hx, -hz},
		{"pocket_side_n", 0, -hz},
		{"pocket_corner_ne", hx, -hz},
		{"pocket_corner_sw", -hx, hz},
		{"pocket_side_s", 0, hz},
		{"pocket_corner_se", hx, hz},
	}
	for _, p := range pockets {
		children = append(children, Child{Name: p.name, Position: mgl64.Vec3{p.x, h, p.z}})
	}
	return children
}

// DiscovererFor returns the configured child list, or the standard table
// when cfg.Scene.Children is empty.
func DiscovererFor(cfg config.Config) Discoverer {
	if len(cfg.Scene.Children) == 0 {
		return StandardTable(cfg)
	}
	children := make(StaticChildren, len(cfg.Scene.Children))
	for i, c := range cfg.Scene.Children {
		children[i] = Child{Name: c.Name, Position: mgl64.Vec3(c.Position)}
	}
	return children
}
