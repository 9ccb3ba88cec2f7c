// Package viewer is the desktop map viewer. It draws the political map,
// lets the player pick an army and shows where it can go, and sends move
// orders to a server or plays them out in an offline sandbox.
package viewer

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.design/x/clipboard"

	"world-conquest/internal/client"
	"world-conquest/internal/protocol"
	"world-conquest/pkg/maps"
)

const (
	panelWidth = 280
	minHeight  = 420
	wrapChars  = (panelWidth - 24) / 7
)

// Options configures a Viewer.
type Options struct {
	Config  *client.Config
	Trace   maps.TraceOptions
	Network *client.NetworkClient // nil plays offline
	Log     *zap.Logger
}

// Viewer implements ebiten.Game.
type Viewer struct {
	cfg     *client.Config
	tracker *client.Tracker
	network *client.NetworkClient
	trace   maps.TraceOptions
	log     *zap.Logger

	mapImage   *ebiten.Image
	mapVersion int64
	outlines   map[maps.ProvinceID][]image.Point

	hover    maps.ProvinceID
	selected string // army ID
	reach    map[maps.ProvinceID]int

	clipboardOK bool
	notice      string

	endTurnBtn *Button
	outlineBtn *Button
}

// New creates a viewer over a tracker.
func New(tracker *client.Tracker, opts Options) *Viewer {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = client.DefaultConfig()
	}

	v := &Viewer{
		cfg:      cfg,
		tracker:  tracker,
		network:  opts.Network,
		trace:    opts.Trace,
		log:      log.Named("viewer"),
		outlines: make(map[maps.ProvinceID][]image.Point),
	}

	if err := clipboard.Init(); err != nil {
		v.log.Warn("clipboard unavailable", zap.Error(err))
	} else {
		v.clipboardOK = true
	}

	x := v.mapWidth() + 12
	v.endTurnBtn = &Button{X: x, Y: 0, W: panelWidth - 24, H: 28, Text: "End Turn (E)", Primary: true, OnClick: v.endTurn}
	v.outlineBtn = &Button{X: x, Y: 0, W: panelWidth - 24, H: 28, Text: "Outlines (O)", OnClick: v.toggleOutlines}
	return v
}

// Size is the window size that fits the map and the side panel.
func (v *Viewer) Size() (int, int) {
	return v.mapWidth() + panelWidth, max(v.mapHeight(), minHeight)
}

func (v *Viewer) mapWidth() int {
	return v.tracker.World().Width * v.cfg.Scale
}

func (v *Viewer) mapHeight() int {
	return v.tracker.World().Height * v.cfg.Scale
}

// Layout implements ebiten.Game.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.Size()
}

// Update implements ebiten.Game.
func (v *Viewer) Update() error {
	_, h := v.Size()
	v.endTurnBtn.Y = h - 80
	v.outlineBtn.Y = h - 44
	v.endTurnBtn.Disabled = !v.myTurn()

	clicked := v.endTurnBtn.Update()
	clicked = v.outlineBtn.Update() || clicked

	mx, my := ebiten.CursorPosition()
	v.hover = v.provinceAt(mx, my)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		v.clearSelection()
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		v.endTurn()
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		v.toggleOutlines()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		v.copyProvince()
	}

	if !clicked && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && v.hover != 0 {
		v.click(v.hover)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		v.clearSelection()
	}
	return nil
}

// click selects one of our armies or orders the selected army to move.
func (v *Viewer) click(id maps.ProvinceID) {
	if army, ok := v.tracker.ArmyAt(id); ok && army.ID != v.selected {
		v.selected = army.ID
		v.reach = v.tracker.Affordable(army.ID)
		v.notice = ""
		return
	}
	if v.selected == "" {
		return
	}

	armyID := v.selected
	if _, _, err := v.tracker.Predict(armyID, id); err != nil {
		// The server would refuse it too; say why without a round trip.
		v.notice = fmt.Sprintf("Cannot move %s: %s", armyID, err)
		return
	}

	if v.network != nil {
		err := v.network.SendPayload(protocol.TypeMoveArmy, protocol.MoveArmyPayload{ArmyID: armyID, TargetProvinceID: id})
		if err != nil {
			v.log.Warn("failed to send move", zap.Error(err))
		}
	} else if _, err := v.tracker.MoveLocal(armyID, id); err != nil {
		v.notice = err.Error()
	}
	v.clearSelection()
}

func (v *Viewer) clearSelection() {
	v.selected = ""
	v.reach = nil
}

func (v *Viewer) endTurn() {
	if !v.myTurn() {
		return
	}
	v.clearSelection()
	if v.network != nil {
		if err := v.network.SendPayload(protocol.TypeEndTurn, struct{}{}); err != nil {
			v.log.Warn("failed to send end turn", zap.Error(err))
		}
		return
	}
	if _, err := v.tracker.EndTurnLocal(); err != nil {
		v.notice = err.Error()
	}
}

func (v *Viewer) toggleOutlines() {
	v.cfg.ShowOutlines = !v.cfg.ShowOutlines
}

func (v *Viewer) copyProvince() {
	if v.hover == 0 {
		return
	}
	if !v.clipboardOK {
		v.notice = "Clipboard unavailable"
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(v.hover.String()))
	v.notice = "Copied " + v.hover.String()
}

func (v *Viewer) myTurn() bool {
	view := v.tracker.View()
	return view.PlayerID != "" && view.State.CurrentPlayerID == view.PlayerID
}

func (v *Viewer) provinceAt(sx, sy int) maps.ProvinceID {
	if sx < 0 || sy < 0 || sx >= v.mapWidth() || sy >= v.mapHeight() {
		return 0
	}
	p := v.tracker.World().ProvinceAt(sx/v.cfg.Scale, sy/v.cfg.Scale)
	if p == nil {
		return 0
	}
	return p.ID
}

// Draw implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(ColorBackground)
	view := v.tracker.View()

	if v.mapImage == nil || v.mapVersion != view.Version {
		v.redraw(view)
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(v.cfg.Scale), float64(v.cfg.Scale))
	screen.DrawImage(v.mapImage, op)

	if v.cfg.ShowOutlines {
		for id := range v.reach {
			v.strokeOutline(screen, id, 1, ColorReach)
		}
	}
	if army, ok := view.State.Army(v.selected); ok {
		v.strokeOutline(screen, army.ProvinceID, 2, ColorSelected)
	}
	if v.hover != 0 {
		v.strokeOutline(screen, v.hover, 1, ColorText)
	}
	v.drawArmies(screen, view)
	v.drawPanel(screen, view)
}

func (v *Viewer) redraw(view client.View) {
	w := v.tracker.World()
	owner := view.State.Ownership.Owner
	img := maps.Render(w, owner, w.Borders(owner), view.State.Palette())
	if v.mapImage != nil {
		v.mapImage.Deallocate()
	}
	v.mapImage = ebiten.NewImageFromImage(img)
	v.mapVersion = view.Version
	v.log.Debug("map redrawn", zap.Int64("version", view.Version))
}

func (v *Viewer) strokeOutline(screen *ebiten.Image, id maps.ProvinceID, width float32, clr color.RGBA) {
	pts, ok := v.outlines[id]
	if !ok {
		pts = v.tracker.World().Outline(id, v.trace)
		v.outlines[id] = pts
	}
	if len(pts) < 2 {
		return
	}

	s := float32(v.cfg.Scale)
	prev := pts[len(pts)-1]
	for _, p := range pts {
		vector.StrokeLine(screen,
			float32(prev.X)*s, float32(prev.Y)*s, float32(p.X)*s, float32(p.Y)*s,
			width, clr, true)
		prev = p
	}
}

func (v *Viewer) drawArmies(screen *ebiten.Image, view client.View) {
	w := v.tracker.World()
	pal := view.State.Palette()
	s := float32(v.cfg.Scale)

	for _, id := range view.State.ArmyIDs() {
		a := view.State.Armies[id]
		p := w.Province(a.ProvinceID)
		if p == nil {
			continue
		}
		cx := float32(p.Bounds.Min.X+p.Bounds.Max.X) / 2 * s
		cy := float32(p.Bounds.Min.Y+p.Bounds.Max.Y) / 2 * s

		clr := ColorText
		if c, ok := pal.Countries[a.CountryID]; ok {
			clr.R, clr.G, clr.B = c.R, c.G, c.B
		}
		vector.DrawFilledCircle(screen, cx, cy, 3*s, clr, true)
		vector.StrokeCircle(screen, cx, cy, 3*s, 1, ColorBackground, true)
	}
}

func (v *Viewer) drawPanel(screen *ebiten.Image, view client.View) {
	x := v.mapWidth()
	_, h := v.Size()
	DrawPanel(screen, x, 0, panelWidth, h)

	x += 12
	y := 12
	line := func(s string, clr color.RGBA) {
		for _, l := range wrap(s, wrapChars) {
			DrawText(screen, l, x, y, clr)
			y += lineHeight
		}
	}

	st := view.State
	line(fmt.Sprintf("Round %d  %s", st.Round, st.CurrentDate.Format("January 2006")), ColorText)
	switch {
	case view.Country != "":
		line("Playing "+string(view.Country), ColorSuccess)
	case view.GameID != "":
		line("Observing", ColorTextMuted)
	}
	if st.CurrentPlayerID != "" {
		turn := "Turn: " + v.playerName(st.CurrentPlayerID, view)
		line(turn, ColorTextMuted)
	}
	y += lineHeight / 2

	if v.hover != 0 {
		line("Province "+v.hover.String(), ColorText)
		owner := "unowned"
		if c, ok := st.Owner(v.hover); ok {
			owner = string(c)
		}
		if p := v.tracker.World().Province(v.hover); p != nil && p.IsWater {
			owner = "water"
		}
		line("  "+owner, ColorTextMuted)

		if v.selected != "" {
			if _, cost, err := v.tracker.Predict(v.selected, v.hover); err != nil {
				line("  "+err.Error(), ColorDanger)
			} else {
				line(fmt.Sprintf("  %d moves", cost), ColorReach)
			}
		}
		y += lineHeight / 2
	}

	if army, ok := st.Army(v.selected); ok {
		line(fmt.Sprintf("%s (%s)", army.ID, army.GeneralName), ColorText)
		line(fmt.Sprintf("  at %s, %d moves left", army.ProvinceID, army.MovesRemaining), ColorTextMuted)
		line(fmt.Sprintf("  %d provinces in reach", len(v.reach)), ColorTextMuted)
		y += lineHeight / 2
	}

	counts := make(map[maps.CountryID]int)
	for _, c := range st.Ownership {
		counts[c]++
	}
	ids := make([]maps.CountryID, 0, len(st.Countries))
	for id := range st.Countries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		line(fmt.Sprintf("%-14s %3d", st.Countries[id].Name, counts[id]), ColorTextMuted)
	}
	y += lineHeight / 2

	if view.Status != "" {
		line(view.Status, ColorText)
	}
	if v.notice != "" {
		line(v.notice, ColorDanger)
	}
	if v.network != nil && !v.network.IsConnected() {
		line("Disconnected", ColorDanger)
	}

	v.endTurnBtn.Draw(screen)
	v.outlineBtn.Draw(screen)
}

func (v *Viewer) playerName(playerID string, view client.View) string {
	if playerID == view.PlayerID {
		return "you"
	}
	if c, ok := view.State.CountryOf(playerID); ok {
		return string(c)
	}
	return playerID
}
