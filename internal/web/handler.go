// Package web serves the chart pages: the birth-data form, the result grid
// with its detail panel, palace navigation, the CSV export and reset.
package web

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ziwei/internal/export"
	"ziwei/internal/kb"
	"ziwei/internal/palace"
	"ziwei/internal/prefs"
	"ziwei/internal/render"
	"ziwei/internal/session"
	"ziwei/internal/timeslot"
	"ziwei/pkg/logger"
	"ziwei/pkg/models"
)

const pageTitle = "紫微斗數 2026 流年"

type Handler struct {
	Ctl     *session.Controller
	KB      *kb.Store
	Prefs   *prefs.Repo
	Limiter *Limiter
	MinYear int
	MaxYear int
}

func NewHandler(ctl *session.Controller, store *kb.Store) *Handler {
	return &Handler{Ctl: ctl, KB: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.index)
	rg.POST("/chart", h.limit(), h.calculate)
	rg.POST("/chart/choose", h.choose)
	rg.GET("/chart/palace/:idx", h.palace)
	rg.POST("/chart/palace/:idx/next", h.step(palace.Next))
	rg.POST("/chart/palace/:idx/prev", h.step(palace.Prev))
	rg.GET("/chart/export.csv", h.export)
	rg.POST("/reset", h.reset)
}

func (h *Handler) limit() gin.HandlerFunc {
	if h.Limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return h.Limiter.Middleware()
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

func (h *Handler) index(c *gin.Context) {
	id := SessionID(c)
	st := h.Ctl.State(id)

	if raw := c.Query("palace"); raw != "" && st.HasChart() {
		idx, err := strconv.Atoi(raw)
		if err != nil || !palace.ValidIndex(idx) {
			h.render(c, http.StatusBadRequest, st, session.Message(session.ErrInvalidInput))
			return
		}
		next, err := h.Ctl.Select(id, idx)
		if err != nil {
			h.render(c, http.StatusConflict, st, session.Message(err))
			return
		}
		st = next
	}

	if st.Stage == session.StageInput && st.Input.Year == 0 {
		st.Input = h.remembered(c)
	}
	h.render(c, http.StatusOK, st, st.Err)
}

// remembered fills the form from the owner's saved date, time and calendar.
func (h *Handler) remembered(c *gin.Context) models.BirthInput {
	p := prefs.Prefs{DOB: prefs.DefaultDOB, TOB: prefs.DefaultTOB}
	if h.Prefs != nil {
		loaded, err := h.Prefs.Load(c.Request.Context(), Owner(c))
		if err != nil {
			logger.Named("web").Warnw("load prefs failed", "err", err)
		} else {
			p = loaded
		}
	}
	cal, leap := p.DateCalendar()
	in := models.BirthInput{Calendar: cal, LeapMonth: leap, Gender: models.GenderMale, Time: p.TOB}
	y, m, d, err := timeslot.ParseDate(cal, p.DOB)
	if err != nil {
		in.Calendar, in.LeapMonth = models.CalendarSolar, false
		y, m, d, _ = timeslot.ParseDate(models.CalendarSolar, prefs.DefaultDOB)
	}
	in.Year, in.Month, in.Day = y, m, d
	return in
}

func (h *Handler) page(c *gin.Context, st session.State, msg string) (render.Page, error) {
	base := h.KB.Current()
	p := render.Page{
		Title:     pageTitle,
		Stage:     string(st.Stage),
		Error:     msg,
		SessionID: SessionID(c),
		Form:      render.NewForm(st.Input, h.MinYear, h.MaxYear),
	}
	switch st.Stage {
	case session.StageResult:
		res, err := render.BuildResult(st.Chart, st.Annotations, base, st.Selected)
		if err != nil {
			return p, err
		}
		p.Result = res
	case session.StageChoose:
		for _, cand := range st.Candidates {
			p.Candidates = append(p.Candidates, render.Candidate(cand.Slot, cand.Chart, base))
		}
	}
	return p, nil
}

func (h *Handler) render(c *gin.Context, status int, st session.State, msg string) {
	p, err := h.page(c, st, msg)
	if err != nil {
		logger.Named("web").Errorw("build page failed", "session", SessionID(c), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build page"})
		return
	}
	if wantsJSON(c) {
		c.JSON(status, gin.H{
			"stage":      p.Stage,
			"error":      p.Error,
			"result":     p.Result,
			"candidates": p.Candidates,
		})
		return
	}
	c.HTML(status, "layout", p)
}

// done answers a successful POST: JSON clients get the new state, browsers
// are sent back to the page.
func (h *Handler) done(c *gin.Context, st session.State) {
	if wantsJSON(c) {
		h.render(c, http.StatusOK, st, "")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

type chartForm struct {
	Calendar  string `form:"calendar" json:"calendar"`
	Year      int    `form:"year" json:"year"`
	Month     int    `form:"month" json:"month"`
	Day       int    `form:"day" json:"day"`
	LeapMonth bool   `form:"leap_month" json:"leap_month"`
	Time      string `form:"time" json:"time"`
	Branch    string `form:"branch" json:"branch"`
	ZiChoice  string `form:"zi_choice" json:"zi_choice"`
	Gender    string `form:"gender" json:"gender"`
}

func (f chartForm) input() models.BirthInput {
	return models.BirthInput{
		Calendar:  models.Calendar(f.Calendar),
		Year:      f.Year,
		Month:     f.Month,
		Day:       f.Day,
		LeapMonth: f.LeapMonth,
		Time:      f.Time,
		Branch:    f.Branch,
		ZiChoice:  f.ZiChoice,
		Gender:    models.Gender(f.Gender),
	}
}

func (h *Handler) calculate(c *gin.Context) {
	id := SessionID(c)
	var form chartForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, h.Ctl.State(id), session.Message(session.ErrInvalidInput))
		return
	}
	in := form.input()

	st, err := h.Ctl.Calculate(c.Request.Context(), id, Owner(c), in)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrCalculationFailed) {
			status = http.StatusBadGateway
		}
		// keep what the visitor typed in the form
		if st.Stage == session.StageInput {
			st.Input = in
		}
		h.render(c, status, st, session.Message(err))
		return
	}
	h.done(c, st)
}

type chooseForm struct {
	Slot *int `form:"slot" json:"slot"`
}

func (h *Handler) choose(c *gin.Context) {
	id := SessionID(c)
	var form chooseForm
	if err := c.ShouldBind(&form); err != nil || form.Slot == nil {
		h.render(c, http.StatusBadRequest, h.Ctl.State(id), session.Message(session.ErrInvalidInput))
		return
	}
	st, err := h.Ctl.Choose(c.Request.Context(), id, Owner(c), *form.Slot)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrNotChoosing) {
			status = http.StatusConflict
		}
		h.render(c, status, st, session.Message(err))
		return
	}
	h.done(c, st)
}

func paramIndex(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil || !palace.ValidIndex(idx) {
		return 0, false
	}
	return idx, true
}

// palace returns the detail panel of one palace without changing the
// selection: an HTML fragment, or JSON when asked for.
func (h *Handler) palace(c *gin.Context) {
	idx, ok := paramIndex(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid palace index"})
		return
	}
	st := h.Ctl.State(SessionID(c))
	if !st.HasChart() {
		c.JSON(http.StatusConflict, gin.H{"error": session.Message(session.ErrNoChart)})
		return
	}
	p, err := render.Detail(st.Chart, st.Annotations, h.KB.Current(), idx)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, p)
		return
	}
	c.HTML(http.StatusOK, "detail", &p)
}

// step selects the palace after or before :idx.
func (h *Handler) step(move func(int) int) gin.HandlerFunc {
	return func(c *gin.Context) {
		idx, ok := paramIndex(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid palace index"})
			return
		}
		st, err := h.Ctl.Select(SessionID(c), move(idx))
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": session.Message(err)})
			return
		}
		if wantsJSON(c) {
			p, err := render.Detail(st.Chart, st.Annotations, h.KB.Current(), st.Selected)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, p)
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func (h *Handler) export(c *gin.Context) {
	id := SessionID(c)
	st := h.Ctl.State(id)
	if !st.HasChart() {
		c.JSON(http.StatusConflict, gin.H{"error": session.Message(export.ErrNoChart)})
		return
	}
	doc, err := export.Build(export.Source{
		Input:       st.Input,
		Chart:       st.Chart,
		Annotations: st.Annotations,
		KB:          h.KB.Current(),
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": session.Message(err)})
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, doc); err != nil {
		logger.Named("web").Errorw("write csv failed", "session", id, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write csv"})
		return
	}
	c.Header("Content-Disposition", export.Disposition())
	c.Data(http.StatusOK, export.MIME, buf.Bytes())
}

func (h *Handler) reset(c *gin.Context) {
	st := h.Ctl.Reset(SessionID(c))
	h.done(c, st)
}
