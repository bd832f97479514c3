package photocredit

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/eringen/photocredit/credit"
)

const (
	maxImageWidth  = 1600
	jpegQuality    = 85
	maxUploadSize  = 20 << 20 // 20MB
	uploadsSubdir  = "uploads"
	dedupThreshold = 10 // max dHash distance of two copies of one photo
)

// processedUpload is a decoded, resized and re-encoded upload.
type processedUpload struct {
	att      Attachment
	data     []byte
	embedded embeddedCredit
}

// processImage decodes raw, reads its embedded credit metadata, hashes it
// and scales it down to maxImageWidth before encoding it as JPEG.
func processImage(raw []byte, originalName string) (processedUpload, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return processedUpload{}, fmt.Errorf("decode image: %w", err)
	}

	var hash uint64
	if h, err := goimagehash.DifferenceHash(img); err == nil {
		hash = h.GetHash()
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return processedUpload{}, fmt.Errorf("encode jpeg: %w", err)
	}

	base := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	filename := Slugify(base)
	if filename == "" {
		filename = uuid.NewString()[:8]
	}
	return processedUpload{
		att: Attachment{
			Filename:     filename + ".jpg",
			OriginalName: originalName,
			Title:        strings.TrimSpace(base),
			Width:        w,
			Height:       h,
			Size:         buf.Len(),
			Hash:         hash,
			UploadedAt:   time.Now().UTC(),
		},
		data:     buf.Bytes(),
		embedded: readEmbeddedCredit(raw, format),
	}, nil
}

// findDuplicate returns a stored attachment that is perceptually identical
// to hash.
func (a *App) findDuplicate(hash uint64) (Attachment, bool, error) {
	if hash == 0 {
		return Attachment{}, false, nil
	}
	existing, err := a.Store.ListAttachments()
	if err != nil {
		return Attachment{}, false, err
	}
	h := goimagehash.NewImageHash(hash, goimagehash.DHash)
	for _, ex := range existing {
		if ex.Hash == 0 {
			continue
		}
		dist, err := h.Distance(goimagehash.NewImageHash(ex.Hash, goimagehash.DHash))
		if err == nil && dist < dedupThreshold {
			return ex, true, nil
		}
	}
	return Attachment{}, false, nil
}

// uniqueFilename appends a counter until name is unused on disk and in the
// store.
func (a *App) uniqueFilename(name string) (string, error) {
	dir := filepath.Join(a.Config.StaticDir, uploadsSubdir)
	base := strings.TrimSuffix(name, ".jpg")
	candidate := name
	for counter := 2; ; counter++ {
		_, statErr := os.Stat(filepath.Join(dir, candidate))
		taken, err := a.Store.FilenameTaken(candidate)
		if err != nil {
			return "", err
		}
		if statErr != nil && !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(counter) + ".jpg"
	}
}

// storeUpload writes a processed upload to disk and the store and prefills
// its credit fields from embedded metadata.
func (a *App) storeUpload(up processedUpload) (int64, error) {
	name, err := a.uniqueFilename(up.att.Filename)
	if err != nil {
		return 0, err
	}
	up.att.Filename = name

	dir := filepath.Join(a.Config.StaticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), up.data, 0o644); err != nil {
		return 0, fmt.Errorf("write image: %w", err)
	}
	id, err := a.Store.SaveAttachment(up.att)
	if err != nil {
		_ = os.Remove(filepath.Join(dir, name))
		return 0, err
	}
	for field, value := range up.embedded.fields() {
		if err := a.Store.SetField(id, field, value); err != nil {
			return id, fmt.Errorf("prefill %s: %w", field, err)
		}
	}
	return id, nil
}

func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 20MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	raw, err := io.ReadAll(io.LimitReader(src, maxUploadSize))
	if err != nil {
		return err
	}

	up, err := processImage(raw, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	if dup, ok, err := a.findDuplicate(up.att.Hash); err != nil {
		return err
	} else if ok {
		return a.renderImageList(c, fmt.Sprintf("Not uploaded: %s looks identical to image #%d (%s).", file.Filename, dup.ID, dup.Filename))
	}

	id, err := a.storeUpload(up)
	if err != nil {
		return err
	}
	a.Logger.Info("image uploaded",
		zap.Int64("attachment_id", id),
		zap.String("filename", up.att.Filename),
		zap.Int("prefilled_fields", len(up.embedded.fields())))
	return c.Redirect(http.StatusSeeOther, "/admin/images/"+strconv.FormatInt(id, 10)+"/")
}

func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image id")
	}
	filename, err := a.Store.DeleteAttachment(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	_ = os.Remove(filepath.Join(a.Config.StaticDir, uploadsSubdir, filename))
	return a.renderImageList(c, "Image deleted.")
}

func (a *App) handleImageList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderImageList(c, c.QueryParam("msg"))
}

func (a *App) renderImageList(c echo.Context, msg string) error {
	images, err := a.Store.ListAttachments()
	if err != nil {
		return err
	}
	return a.render(c, http.StatusOK, a.Views.AdminImages(images, msg, CsrfToken(c)))
}

func (a *App) handleImageEdit(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	att, err := a.attachmentParam(c)
	if err != nil {
		return err
	}
	return a.render(c, http.StatusOK, a.Views.AdminImageForm(att, credit.Licenses, c.QueryParam("msg"), CsrfToken(c)))
}

// urlFields are the credit fields that must hold an absolute URL.
var urlFields = map[string]string{
	credit.FieldPhotographerWebsite: "Photographer website",
	credit.FieldLicenseURL:          "License link",
	credit.FieldAcquireLicensePage:  "Acquire license page",
}

func (a *App) handleImageSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	att, err := a.attachmentParam(c)
	if err != nil {
		return err
	}

	att.Title = strings.TrimSpace(c.FormValue("title"))
	att.AltText = strings.TrimSpace(c.FormValue("alt_text"))
	att.Caption = strings.TrimSpace(c.FormValue("caption"))
	values := make(map[string]string, len(credit.Fields))
	for _, f := range credit.Fields {
		values[f] = strings.TrimSpace(c.FormValue(f))
	}
	for f, label := range urlFields {
		if v := values[f]; v != "" && !credit.ValidURL(v) {
			att.Fields = values
			msg := label + " must be an absolute URL."
			return a.render(c, http.StatusUnprocessableEntity, a.Views.AdminImageForm(att, credit.Licenses, msg, CsrfToken(c)))
		}
	}

	if _, err := a.Store.SaveAttachment(att); err != nil {
		return err
	}
	for _, f := range credit.Fields {
		if err := a.Store.SetField(att.ID, f, values[f]); err != nil {
			return fmt.Errorf("save field %s: %w", f, err)
		}
	}
	ic := credit.LoadCredit(a.fieldReader(), att.Asset(a.Config.URL))
	a.autofillLicenseURL(&ic)

	return c.Redirect(http.StatusSeeOther, "/admin/images/"+strconv.FormatInt(att.ID, 10)+"/?msg=Saved.")
}

func (a *App) attachmentParam(c echo.Context) (Attachment, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Attachment{}, echo.NewHTTPError(http.StatusBadRequest, "invalid image id")
	}
	att, err := a.Store.GetAttachment(id)
	if errors.Is(err, ErrNotFound) {
		return Attachment{}, echo.NewHTTPError(http.StatusNotFound)
	}
	return att, err
}
