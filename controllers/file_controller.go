package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"neovault/middleware"
	"neovault/storage"
	"neovault/uploads"
	"neovault/utils"
)

// FileController manages file listing, upload, download, and mutations.
type FileController struct {
	store    *storage.Store
	pipeline *uploads.Pipeline
}

// NewFileController creates a new FileController instance.
func NewFileController(store *storage.Store, pipeline *uploads.Pipeline) *FileController {
	return &FileController{store: store, pipeline: pipeline}
}

// List returns all active files with their category, newest first. Public.
// An optional categoryId query scopes the listing to one category.
func (f *FileController) List(ctx *gin.Context) {
	var err error
	var files interface{}
	if categoryID := ctx.Query("categoryId"); categoryID != "" {
		files, err = f.store.ListFilesByCategory(categoryID)
	} else {
		files, err = f.store.ListFiles()
	}
	if err != nil {
		utils.Sugar.Errorf("listing files failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Failed to fetch files")
		return
	}
	ctx.JSON(http.StatusOK, files)
}

// Upload runs the pipeline on the multipart payload under the "file" field.
func (f *FileController) Upload(ctx *gin.Context) {
	src, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Message(ctx, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer src.Close()

	var categoryID *string
	if v := ctx.PostForm("categoryId"); v != "" {
		categoryID = &v
	}

	file, err := f.pipeline.Accept(
		src,
		header.Header.Get("Content-Type"),
		header.Filename,
		header.Size,
		categoryID,
		middleware.Username(ctx),
	)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrTypeNotAllowed):
			utils.Message(ctx, http.StatusBadRequest, "File type not allowed")
		case errors.Is(err, uploads.ErrTooLarge):
			utils.Message(ctx, http.StatusRequestEntityTooLarge, "File exceeds the upload size limit")
		case errors.Is(err, uploads.ErrInvalidCategory):
			utils.Message(ctx, http.StatusBadRequest, "Invalid category")
		default:
			utils.Sugar.Errorf("upload failed: %v", err)
			utils.Message(ctx, http.StatusInternalServerError, "Failed to upload file")
		}
		return
	}
	ctx.JSON(http.StatusCreated, file)
}

// Download streams the stored bytes with the original name in the
// Content-Disposition header. Public.
func (f *FileController) Download(ctx *gin.Context) {
	file, path, err := f.pipeline.Open(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.Message(ctx, http.StatusNotFound, "File not found")
			return
		}
		utils.Sugar.Errorf("download failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Failed to download file")
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	ctx.Header("Content-Type", file.MimeType)
	ctx.File(path)
}

// Delete soft-deletes the file: the row stays, the bytes stay, but nothing
// lists or serves it anymore. The reaper reclaims bytes later.
func (f *FileController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if _, err := f.store.GetFile(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.Message(ctx, http.StatusNotFound, "File not found")
			return
		}
		utils.Sugar.Errorf("deleting file failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Failed to delete file")
		return
	}
	if err := f.store.SoftDeleteFile(id); err != nil {
		utils.Sugar.Errorf("deleting file failed: %v", err)
		utils.Message(ctx, http.StatusInternalServerError, "Failed to delete file")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Patch applies a typed metadata update to an active file.
func (f *FileController) Patch(ctx *gin.Context) {
	var patch storage.FilePatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		utils.ValidationFailure(ctx, "Invalid file data", err.Error())
		return
	}

	file, err := f.store.UpdateFile(ctx.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			utils.Message(ctx, http.StatusNotFound, "File not found")
		case errors.Is(err, storage.ErrInvalidCategory):
			utils.Message(ctx, http.StatusBadRequest, "Invalid category")
		default:
			utils.Sugar.Errorf("updating file failed: %v", err)
			utils.Message(ctx, http.StatusInternalServerError, "Failed to update file")
		}
		return
	}
	ctx.JSON(http.StatusOK, file)
}
