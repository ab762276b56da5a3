package azure

import (
	"context"
	"fmt"

	"github.com/poiesic/enrichit/ai"
	"github.com/poiesic/enrichit/core"
)

const (
	gpuFeatures     = "caption,denseCaptions,objects,tags,read"
	defaultFeatures = "objects,tags,read"
)

// VisionAnalyzer implements ai.VisionAnalyzer against the image analysis REST API.
type VisionAnalyzer struct {
	client    *restClient
	url       string
	gpuRegion bool
}

var _ ai.VisionAnalyzer = (*VisionAnalyzer)(nil)

type confidenceText struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type namedConfidence struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type detectedObject struct {
	Name       string            `json:"name"`
	Confidence float64           `json:"confidence"`
	Tags       []namedConfidence `json:"tags"`
}

type analyzeResponse struct {
	CaptionResult       *confidenceText `json:"captionResult"`
	DenseCaptionsResult *struct {
		Values []confidenceText `json:"values"`
	} `json:"denseCaptionsResult"`
	ObjectsResult *struct {
		Values []detectedObject `json:"values"`
	} `json:"objectsResult"`
	TagsResult *struct {
		Values []namedConfidence `json:"values"`
	} `json:"tagsResult"`
	ReadResult *struct {
		Pages []struct {
			Words []struct {
				Content string `json:"content"`
			} `json:"words"`
		} `json:"pages"`
	} `json:"readResult"`
}

// VisionURL returns the analyze URL for an endpoint. The requested features
// depend on whether the region supports caption analysis.
func VisionURL(endpoint string, gpuRegion bool) string {
	features := defaultFeatures
	if gpuRegion {
		features = gpuFeatures
	}
	return fmt.Sprintf("%scomputervision/imageanalysis:analyze?api-version=2023-04-01-preview&features=%s&gender-neutral-caption=true",
		endpoint, features)
}

func newVisionAnalyzer(config *ai.Config) (*VisionAnalyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &VisionAnalyzer{
		client:    newRESTClient(config, "azure-vision"),
		url:       VisionURL(config.Endpoint, config.GPURegion),
		gpuRegion: config.GPURegion,
	}, nil
}

// NewVisionAnalyzer creates a vision analyzer using the provided configuration.
//
// Returns ai.VisionAnalyzer interface to enforce abstraction.
func NewVisionAnalyzer(config *ai.Config) (ai.VisionAnalyzer, error) {
	return newVisionAnalyzer(config)
}

// AnalyzeImage posts the raw image bytes and normalizes the response.
func (v *VisionAnalyzer) AnalyzeImage(ctx context.Context, image []byte) (*core.VisionResult, error) {
	v.client.logger.Debug("analyzing image", "bytes", len(image), "gpu_region", v.gpuRegion)

	var resp analyzeResponse
	if err := v.client.post(ctx, "vision", v.url, "application/octet-stream", image, &resp); err != nil {
		return nil, err
	}
	return resp.toResult(), nil
}

func (r *analyzeResponse) toResult() *core.VisionResult {
	result := &core.VisionResult{}

	if r.CaptionResult != nil {
		result.Caption = &core.Caption{Text: r.CaptionResult.Text, Confidence: r.CaptionResult.Confidence}
	}

	if r.DenseCaptionsResult != nil {
		for _, c := range r.DenseCaptionsResult.Values {
			result.DenseCaptions = append(result.DenseCaptions, core.Caption{Text: c.Text, Confidence: c.Confidence})
		}
	}

	if r.ObjectsResult != nil {
		for _, o := range r.ObjectsResult.Values {
			name, confidence := o.Name, o.Confidence
			// The GA response nests the label under tags.
			if name == "" && len(o.Tags) > 0 {
				name, confidence = o.Tags[0].Name, o.Tags[0].Confidence
			}
			result.Objects = append(result.Objects, core.Detection{Name: name, Confidence: confidence})
		}
	}

	if r.TagsResult != nil {
		for _, t := range r.TagsResult.Values {
			result.Tags = append(result.Tags, core.Detection{Name: t.Name, Confidence: t.Confidence})
		}
	}

	// Only the first page is consumed.
	if r.ReadResult != nil && len(r.ReadResult.Pages) > 0 {
		for _, w := range r.ReadResult.Pages[0].Words {
			result.OCRLines = append(result.OCRLines, w.Content)
		}
	}

	return result
}
