package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"agadeepaoli/internal/domain/models"
	"agadeepaoli/internal/lib/logger/sl"
	"agadeepaoli/internal/storage"
	"agadeepaoli/internal/transport/http/dto"
	"agadeepaoli/internal/transport/http/dto/response"

	_ "agadeepaoli/docs"
)

// multipartOverhead is the slack allowed on top of the file size limit for
// boundaries and the other form fields.
const multipartOverhead = 1 << 20

type PoemService interface {
	ListPoems(ctx context.Context, poemType string) ([]models.Poem, error)
	CreatePoem(ctx context.Context, req dto.CreatePoemRequest) (models.Poem, error)
	DeletePoem(ctx context.Context, id int64) error
}

type GalleryService interface {
	ListItems(ctx context.Context) ([]models.GalleryItem, error)
	Upload(ctx context.Context, input dto.UploadImageInput) (models.GalleryItem, error)
	DeleteItem(ctx context.Context, id int64) error
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Routers struct {
	log            *slog.Logger
	PoemService    PoemService
	GalleryService GalleryService
	Health         HealthChecker
	uploadsURL     string
	maxUploadSize  int64
	uploadTimeout  time.Duration
}

func NewRouter(
	log *slog.Logger,
	poemService PoemService,
	galleryService GalleryService,
	health HealthChecker,
	uploadsURL string,
	maxUploadSize int64,
	uploadTimeout time.Duration,
) *Routers {
	return &Routers{
		log:            log,
		PoemService:    poemService,
		GalleryService: galleryService,
		Health:         health,
		uploadsURL:     uploadsURL,
		maxUploadSize:  maxUploadSize,
		uploadTimeout:  uploadTimeout,
	}
}

var ErrInvalidID = errors.New("not valid id")

// ListPoems godoc
// @Summary Список записей
// @Description Все стихи и эссе, новые первыми. Параметр type фильтрует по виду.
// @Tags poems
// @Produce json
// @Param type query string false "Вид записи" Enums(kavithai, katurai)
// @Success 200 {array} models.Poem
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/poems [get]
func (r *Routers) ListPoems(c echo.Context) error {
	const op = "http.routers.ListPoems"

	log := r.log.With(slog.String("op", op))

	poems, err := r.PoemService.ListPoems(c.Request().Context(), c.QueryParam("type"))
	if err != nil {
		log.Error("failed to list poems", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, poems)
}

// CreatePoem godoc
// @Summary Новая запись
// @Description Создаёт стихотворение (kavithai) или эссе (katurai). Автор и дата подставляются по умолчанию.
// @Tags poems
// @Accept json
// @Produce json
// @Param request body dto.CreatePoemRequest true "Запись"
// @Success 201 {object} models.Poem
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/poems [post]
func (r *Routers) CreatePoem(c echo.Context) error {
	const op = "http.routers.CreatePoem"

	log := r.log.With(slog.String("op", op))

	var req dto.CreatePoemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid poem request", slog.String("error", err.Error()))
		return c.JSON(http.StatusBadRequest, response.Error(validationMessage(err)))
	}

	poem, err := r.PoemService.CreatePoem(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPoem) {
			return c.JSON(http.StatusBadRequest, response.Error(invalidPoemMessage(err)))
		}
		log.Error("failed to create poem", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusCreated, poem)
}

// DeletePoem godoc
// @Summary Удалить запись
// @Tags poems
// @Produce json
// @Param id path integer true "ID записи"
// @Success 200 {object} response.DeleteResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/poems/{id} [delete]
func (r *Routers) DeletePoem(c echo.Context) error {
	const op = "http.routers.DeletePoem"

	log := r.log.With(slog.String("op", op))

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidID)
	}

	if err := r.PoemService.DeletePoem(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrPoemNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrPoemNotFound)
		}
		log.Error("failed to delete poem", slog.Int64("id", id), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.Deleted)
}

// ListImages godoc
// @Summary Галерея
// @Description Все загруженные файлы, новые первыми, с публичным URL.
// @Tags gallery
// @Produce json
// @Success 200 {array} dto.GalleryItemResponse
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/images [get]
func (r *Routers) ListImages(c echo.Context) error {
	const op = "http.routers.ListImages"

	log := r.log.With(slog.String("op", op))

	items, err := r.GalleryService.ListItems(c.Request().Context())
	if err != nil {
		log.Error("failed to list gallery items", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, dto.NewGalleryItemResponses(items, r.uploadsURL))
}

// UploadImage godoc
// @Summary Загрузка в галерею
// @Description Принимает изображение, видео или PDF в поле image.
// @Tags gallery
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Файл (макс. 50MB)"
// @Param alt formData string false "Подпись"
// @Success 201 {object} dto.GalleryItemResponse
// @Failure 400 {object} response.ErrorResponse "Нет файла, неверный тип или слишком большой"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/images [post]
func (r *Routers) UploadImage(c echo.Context) error {
	const op = "http.routers.UploadImage"

	log := r.log.With(slog.String("op", op))

	req := c.Request()
	r.extendDeadlines(c, log)
	if r.maxUploadSize > 0 {
		limit := r.maxUploadSize + multipartOverhead
		if req.ContentLength > limit {
			return c.JSON(http.StatusBadRequest, response.ErrFileTooLarge)
		}
		req.Body = http.MaxBytesReader(c.Response(), req.Body, limit)
	}

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return c.JSON(http.StatusBadRequest, response.ErrFileTooLarge)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return c.JSON(http.StatusBadRequest, response.ErrNoFile)
		default:
			log.Warn("failed to parse multipart form", sl.Err(err))
			return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
		}
	}

	item, err := r.GalleryService.Upload(req.Context(), dto.UploadImageInput{
		File: file,
		Alt:  c.FormValue("alt"),
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNoFile):
			return c.JSON(http.StatusBadRequest, response.ErrNoFile)
		case errors.Is(err, storage.ErrFileTooLarge):
			return c.JSON(http.StatusBadRequest, response.ErrFileTooLarge)
		case errors.Is(err, storage.ErrInvalidFileType):
			return c.JSON(http.StatusBadRequest, response.ErrInvalidFileType)
		}
		log.Error("failed to upload gallery item", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusCreated, dto.NewGalleryItemResponse(item, r.uploadsURL))
}

// DeleteImage godoc
// @Summary Удалить файл галереи
// @Description Удаляет файл с диска и запись из базы.
// @Tags gallery
// @Produce json
// @Param id path integer true "ID элемента"
// @Success 200 {object} response.DeleteResponse
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/images/{id} [delete]
func (r *Routers) DeleteImage(c echo.Context) error {
	const op = "http.routers.DeleteImage"

	log := r.log.With(slog.String("op", op))

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidID)
	}

	if err := r.GalleryService.DeleteItem(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrGalleryItemNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrImageNotFound)
		}
		log.Error("failed to delete gallery item", slog.Int64("id", id), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.Deleted)
}

// HealthCheck godoc
// @Summary Проверка состояния
// @Tags system
// @Produce json
// @Success 200 {object} response.HealthResponse
// @Failure 503 {object} response.HealthResponse
// @Router /health [get]
func (r *Routers) HealthCheck(c echo.Context) error {
	const op = "http.routers.HealthCheck"

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := r.Health.Ping(ctx); err != nil {
		r.log.Error("database unreachable", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusServiceUnavailable, response.HealthResponse{Status: "error", Database: "unreachable"})
	}

	return c.JSON(http.StatusOK, response.HealthResponse{Status: "ok", Database: "ok"})
}

// extendDeadlines lets a large body outlive the server-wide read and write
// timeouts.
func (r *Routers) extendDeadlines(c echo.Context, log *slog.Logger) {
	if r.uploadTimeout <= 0 {
		return
	}

	rc := http.NewResponseController(c.Response())
	deadline := time.Now().Add(r.uploadTimeout)
	if err := rc.SetReadDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Warn("failed to extend read deadline", sl.Err(err))
	}
	if err := rc.SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Warn("failed to extend write deadline", sl.Err(err))
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// validationMessage turns validator errors into a short client-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "datetime":
			msgs = append(msgs, field+" must be a YYYY-MM-DD date")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// invalidPoemMessage keeps only the reason, without op prefixes.
func invalidPoemMessage(err error) string {
	msg := err.Error()
	prefix := models.ErrInvalidPoem.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
