package products

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tillpoint/db"
	"tillpoint/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"

	_ "image/gif"
	_ "image/png"
)

const (
	photoDir   = "static/uploads/products/photo"
	thumbDir   = "static/uploads/products/thumb"
	maxPhoto   = 5 << 20
	thumbWidth = 200
)

// UploadProductImage stores a product photo and a register-screen
// thumbnail, then points the SKU at them. Manager only.
func UploadProductImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	sku := ps.ByName("sku")

	count, err := db.ProductsCollection.CountDocuments(ctx, bson.M{"sku": sku})
	if err != nil || count == 0 {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	if err := r.ParseMultipartForm(maxPhoto); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	file, hdr, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mediaType, _, _ := mime.ParseMediaType(hdr.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "image/") || hdr.Size > maxPhoto {
		http.Error(w, "Invalid image file", http.StatusBadRequest)
		return
	}

	buf, err := io.ReadAll(io.LimitReader(file, maxPhoto))
	if err != nil {
		http.Error(w, "Failed to read image", http.StatusInternalServerError)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		http.Error(w, "Unrecognized image format", http.StatusBadRequest)
		return
	}

	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := sku + ext

	if err := os.MkdirAll(photoDir, 0o755); err != nil {
		log.Println("UploadProductImage mkdir:", err)
		http.Error(w, "Failed to save image", http.StatusInternalServerError)
		return
	}
	if err := os.WriteFile(filepath.Join(photoDir, name), buf, 0o644); err != nil {
		log.Println("UploadProductImage write:", err)
		http.Error(w, "Failed to save image", http.StatusInternalServerError)
		return
	}

	if err := writeThumb(img, sku); err != nil {
		log.Println("UploadProductImage thumbnail:", err)
	}

	_, err = db.ProductsCollection.UpdateOne(ctx,
		bson.M{"sku": sku},
		bson.M{"$set": bson.M{"image": name, "updated_at": time.Now()}},
	)
	if err != nil {
		log.Println("UploadProductImage update:", err)
		http.Error(w, "Failed to save image", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"image": name, "thumb": sku + ".jpg"})
}

func writeThumb(img image.Image, sku string) error {
	resized := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)

	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return err
	}
	out, err := os.Create(filepath.Join(thumbDir, sku+".jpg"))
	if err != nil {
		return err
	}
	defer out.Close()

	return jpeg.Encode(out, resized, &jpeg.Options{Quality: 85})
}
