package chat

import (
	"google.golang.org/genai"

	"github.com/fpang/roomedit/internal/imagestore"
)

// Services bundles the Gemini and Imagen implementations of the services the
// roomedit pipeline consumes.
type Services struct {
	Intent    *IntentClient
	Detection *DetectionClient
	Imagen    *ImagenClient
}

// NewServices wires every client to one genai client and one blob store.
// An empty model uses GetModelName.
func NewServices(client *genai.Client, blobs imagestore.BlobStore, model string, vertex VertexConfig) Services {
	return Services{
		Intent:    NewIntentClient(client.Models, model),
		Detection: NewDetectionClient(client.Models, blobs, model),
		Imagen:    NewImagenClient(client.Models, GetImagenModel(), vertex, blobs),
	}
}
