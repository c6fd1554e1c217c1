package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/imagehost/apperror"
	"github.com/krishkalaria12/imagehost/middleware"
	"github.com/krishkalaria12/imagehost/storage"
	"github.com/krishkalaria12/imagehost/transform"
	"github.com/krishkalaria12/imagehost/validation"
)

type transformResponse struct {
	OriginalURL     string             `json:"originalUrl"`
	TransformedURL  string             `json:"transformedUrl"`
	Transformations *transform.Request `json:"transformations"`
	Metadata        transform.Metadata `json:"metadata"`
}

// TransformImage renders the original through the requested operations and
// replaces the image's derived asset. The original blob is never touched.
// Concurrent transforms of one image race and the last update wins.
func (h *Handler) TransformImage(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	req, err := validation.Transform(c.Body())
	if err != nil {
		return err
	}

	image, err := h.ownedImage(c, user)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	log := h.log.WithImageID(image.ID.String())

	src, err := h.blobs.Get(ctx, image.OriginalKey)
	if err != nil {
		h.metrics.TransformDone("error")
		return apperror.Internal("Image transformation failed.", err)
	}

	result, err := h.transformer.Apply(src, req)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindProcessing {
			h.metrics.TransformDone("rejected")
			return err
		}
		h.metrics.TransformDone("error")
		return apperror.Internal("Image transformation failed.", err)
	}

	format := result.Metadata.Format
	key := storage.TransformedKey(user.ID.String(), format.Extension())
	url, err := h.blobs.Put(ctx, result.Data, key, format.ContentType())
	if err != nil {
		h.metrics.TransformDone("error")
		return apperror.Internal("Image transformation failed.", err)
	}

	previous := image.TransformedKey
	image.TransformedKey = &key
	image.TransformedURL = &url
	image.Transformations = &req
	if err := h.images.UpdateTransformation(ctx, image); err != nil {
		if delErr := h.blobs.Delete(ctx, key); delErr != nil {
			log.WithError(delErr).Warn("failed to remove orphaned derived asset")
		}
		h.metrics.TransformDone("error")
		return apperror.Internal("Image transformation failed.", err)
	}

	if previous != nil && *previous != key {
		if err := h.blobs.Delete(ctx, *previous); err != nil {
			log.WithError(err).WithField("key", *previous).Warn("failed to remove previous derived asset")
		}
	}

	h.metrics.TransformDone("ok")
	log.WithField("operations", req.Operations()).Info("image transformed")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Image transformed successfully.",
		"data": transformResponse{
			OriginalURL:     image.OriginalURL,
			TransformedURL:  url,
			Transformations: &req,
			Metadata:        result.Metadata,
		},
	})
}
