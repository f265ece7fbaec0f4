package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"articlesearch/internal/app"
	"articlesearch/internal/pkg/pdfextract"
	"articlesearch/internal/search"
	"articlesearch/internal/transport/http/response"
)

const maxPDFSize = 10 << 20 // 10 MB

type ArticleHandler struct {
	articles *app.ArticleService
	logger   *slog.Logger
}

type CreateArticleRequest struct {
	PageContent string `json:"page_content" binding:"required"`
	Source      string `json:"source" binding:"max=255"`
}

func NewArticleHandler(articles *app.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		articles: articles,
		logger:   slog.Default().With("component", "article-handler"),
	}
}

func (h *ArticleHandler) Create(c *gin.Context) {
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	article, err := h.articles.Add(c.Request.Context(), app.AddArticleInput{
		PageContent: req.PageContent,
		Source:      req.Source,
	})
	if err != nil {
		h.fail(c, "create article failed", err)
		return
	}
	response.OK(c, article)
}

func (h *ArticleHandler) List(c *gin.Context) {
	articles, err := h.articles.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list articles failed", err)
		return
	}
	response.OK(c, articles)
}

// Search runs retrieval and re-ranking for ?q= without calling the agent.
func (h *ArticleHandler) Search(c *gin.Context) {
	results, err := h.articles.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, "search articles failed", err)
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	response.OK(c, results)
}

// UploadPDF accepts a multipart form with "file" (PDF) and optional "source",
// and stores the extracted text as one article.
func (h *ArticleHandler) UploadPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxPDFSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MB)")
		return
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	text, err := pdfextract.ExtractText(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text from PDF: "+err.Error())
		return
	}
	if text == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "PDF contains no extractable text")
		return
	}

	source := strings.TrimSpace(c.PostForm("source"))
	if source == "" {
		source = file.Filename
	}

	article, err := h.articles.Add(c.Request.Context(), app.AddArticleInput{
		PageContent: text,
		Source:      source,
	})
	if err != nil {
		h.fail(c, "create article failed", err)
		return
	}
	response.OK(c, article)
}

func (h *ArticleHandler) fail(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrQueryEmpty):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	default:
		h.logger.Error(message, "err", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, message)
	}
}
