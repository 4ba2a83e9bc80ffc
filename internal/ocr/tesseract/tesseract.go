// Package tesseract provides a recognizer backed by the embedded
// tesseract library via gosseract, avoiding one subprocess per page.
// It requires libtesseract at build time; the subprocess recognizer in
// the ocr package is the default.
package tesseract

import (
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer implements ocr.Recognizer on a gosseract client. A fresh
// client is created per page; the client is not safe for concurrent use
// and per-page setup is cheap next to recognition itself.
type Recognizer struct {
	clientFactory func() *gosseract.Client
	lang          string
	dpi           int
}

// NewRecognizer builds an embedded-library recognizer for the given
// language. dpi is passed to the engine as its resolution hint.
func NewRecognizer(lang string, dpi int) *Recognizer {
	return &Recognizer{clientFactory: gosseract.NewClient, lang: lang, dpi: dpi}
}

// Recognize extracts the text of a single binarized page image.
func (r *Recognizer) Recognize(imagePath string) (string, error) {
	c := r.clientFactory()
	defer c.Close()

	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if r.lang != "" {
		if err := c.SetLanguage(r.lang); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}
	if r.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(r.dpi)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
