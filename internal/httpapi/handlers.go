package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/neumathe/kousuan/catalog"
	"github.com/neumathe/kousuan/engine"
	"github.com/neumathe/kousuan/internal/worksheet"
)

type handlers struct {
	eng      *engine.Engine
	cat      *catalog.Catalog
	sheets   *worksheet.Service
	salt     string
	maxCount int
}

// questionView 题目加上渲染好的学生作答版题面
type questionView struct {
	engine.Question
	Prompt string `json:"prompt"`
}

func viewsOf(qs []engine.Question) []questionView {
	out := make([]questionView, len(qs))
	for i, q := range qs {
		out[i] = questionView{Question: q, Prompt: engine.Render(q, false)}
	}
	return out
}

type generateRequest struct {
	GradeKey   string `json:"grade_key"`
	CategoryID string `json:"category_id"`
	Count      *int   `json:"count"`
	Seed       string `json:"seed"`
}

type smartRequest struct {
	GradeKey string `json:"grade_key"`
	Count    int    `json:"count"`
	Seed     string `json:"seed"`
}

type batchResponse struct {
	Requested  int                      `json:"requested"`
	Count      int                      `json:"count"`
	Shortfall  int                      `json:"shortfall"`
	Allocation []engine.AllocationEntry `json:"allocation,omitempty"`
	Questions  []questionView           `json:"questions"`
}

type worksheetResponse struct {
	*worksheet.Worksheet
	Lines []string `json:"lines"`
}

func (h *handlers) engineFor(seed string) *engine.Engine {
	if seed == "" {
		return h.eng
	}
	return h.eng.WithSource(engine.SeededSource(seed, h.salt))
}

func (h *handlers) checkCount(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", engine.ErrInvalidCount, n)
	}
	if h.maxCount > 0 && n > h.maxCount {
		return fmt.Errorf("%w: %d exceeds limit %d", engine.ErrInvalidCount, n, h.maxCount)
	}
	return nil
}

func (h *handlers) listGrades(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"grades": h.cat.Grades()})
}

func (h *handlers) listCategories(c *gin.Context) {
	g, ok := h.cat.Grade(c.Param("grade"))
	if !ok {
		respondError(c, http.StatusNotFound, codeNotFound, "unknown grade "+c.Param("grade"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"grade": g.Key, "name": g.Name, "categories": h.cat.ListCategories(g.Key)})
}

func (h *handlers) getRule(c *gin.Context) {
	gradeKey, id := c.Param("grade"), c.Param("category")
	rule, ok := h.cat.LookupRule(gradeKey, id)
	if !ok {
		respondErr(c, fmt.Errorf("%w: %s/%s", engine.ErrCategoryNotFound, gradeKey, id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"grade": gradeKey, "category_id": id, "kind": rule.Kind, "rule": rule})
}

func (h *handlers) allocation(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("count", "20"))
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "count must be an integer")
		return
	}
	if err := h.checkCount(n); err != nil {
		respondErr(c, err)
		return
	}
	alloc, err := h.eng.SmartAllocation(c.Param("grade"), n)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"grade": c.Param("grade"), "count": n, "allocation": alloc})
}

func (h *handlers) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body: "+err.Error())
		return
	}
	n := 1
	if req.Count != nil {
		n = *req.Count
	}
	if err := h.checkCount(n); err != nil {
		respondErr(c, err)
		return
	}
	qs, err := h.engineFor(req.Seed).GenerateQuestions(req.GradeKey, req.CategoryID, n)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, batchResponse{
		Requested: n,
		Count:     len(qs),
		Shortfall: n - len(qs),
		Questions: viewsOf(qs),
	})
}

func (h *handlers) smart(c *gin.Context) {
	var req smartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := h.checkCount(req.Count); err != nil {
		respondErr(c, err)
		return
	}
	res, err := h.engineFor(req.Seed).SmartMix(req.GradeKey, req.Count)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, batchResponse{
		Requested:  res.Requested,
		Count:      len(res.Questions),
		Shortfall:  res.Shortfall(),
		Allocation: res.Allocation,
		Questions:  viewsOf(res.Questions),
	})
}

func (h *handlers) createWorksheet(c *gin.Context) {
	var req worksheet.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid JSON body: "+err.Error())
		return
	}
	ws, err := h.sheets.Create(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, worksheetResponse{Worksheet: ws, Lines: worksheet.Lines(ws, ws.ShowAnswers)})
}

func (h *handlers) getWorksheet(c *gin.Context) {
	ws, err := h.sheets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	withAnswers := ws.ShowAnswers
	if v := c.Query("answers"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, codeInvalidRequest, "answers must be a boolean")
			return
		}
		withAnswers = b
	}
	c.JSON(http.StatusOK, worksheetResponse{Worksheet: ws, Lines: worksheet.Lines(ws, withAnswers)})
}
