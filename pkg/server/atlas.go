package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	descio "github.com/matzehuels/atlaspack/pkg/io"
	"github.com/matzehuels/atlaspack/pkg/observability"
	"github.com/matzehuels/atlaspack/pkg/pack"
	"github.com/matzehuels/atlaspack/pkg/pipeline"
	"github.com/matzehuels/atlaspack/pkg/sprite"
)

// atlasMeta is stored next to the artifacts so GETs know the formats.
type atlasMeta struct {
	ImageFormat    string `json:"image_format"`
	ResourceFormat string `json:"resource_format"`
}

// AtlasResponse is returned by POST /v1/atlases.
type AtlasResponse struct {
	ID            string         `json:"id"`
	Width         int            `json:"width"`
	Height        int            `json:"height"`
	Attempts      int            `json:"attempts"`
	Efficiency    float64        `json:"efficiency"`
	ImageURL      string         `json:"image_url"`
	DescriptorURL string         `json:"descriptor_url"`
	Sprites       []descio.Frame `json:"sprites"`
}

func (s *Server) listPackers(w http.ResponseWriter, _ *http.Request) {
	formats := make([]string, 0, len(pipeline.ValidImageFormats))
	for f := range pipeline.ValidImageFormats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	writeJSON(w, http.StatusOK, map[string][]string{
		"packers":          pack.Names(),
		"orderings":        pack.OrderingNames(),
		"image_formats":    formats,
		"resource_formats": descio.Formats(),
	})
}

func (s *Server) createAtlas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.ContentLength > s.MaxUpload {
		s.writeTooLarge(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.writeTooLarge(w)
			return
		}
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "parse upload"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := optionsFromForm(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sprites, err := decodeUploads(r, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := uuid.NewString()
	opts.Output = id + "." + opts.ImageFormat
	opts.Resource = id + "." + opts.ResourceFormat

	res, err := s.Runner.Build(ctx, sprites, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	meta, _ := json.Marshal(atlasMeta{ImageFormat: opts.ImageFormat, ResourceFormat: opts.ResourceFormat})
	entries := map[string][]byte{
		"meta":       meta,
		"image":      res.Artifacts[opts.ImageFormat],
		"descriptor": res.Artifacts[opts.ResourceFormat],
	}
	for kind, data := range entries {
		if err := s.Store.Set(ctx, s.Keyer.AtlasKey(id, kind), data, s.TTL); err != nil {
			s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInternal, err, "store atlas"))
			return
		}
		observability.Cache().OnCacheSet(ctx, "atlas", len(data))
	}

	writeJSON(w, http.StatusCreated, AtlasResponse{
		ID:            id,
		Width:         res.Stats.Width,
		Height:        res.Stats.Height,
		Attempts:      res.Stats.Attempts,
		Efficiency:    res.Stats.Efficiency,
		ImageURL:      "/v1/atlases/" + id + "/image",
		DescriptorURL: "/v1/atlases/" + id + "/descriptor",
		Sprites:       res.Descriptor.Sprites,
	})
}

func (s *Server) writeTooLarge(w http.ResponseWriter) {
	writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
		Code:    apperr.ErrCodeInvalidInput,
		Message: fmt.Sprintf("upload exceeds %d bytes", s.MaxUpload),
	})
}

func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, "image", func(m atlasMeta) string { return m.ImageFormat })
}

func (s *Server) getDescriptor(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, "descriptor", func(m atlasMeta) string { return m.ResourceFormat })
}

func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, kind string, format func(atlasMeta) string) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		s.writeError(w, r, apperr.New(apperr.ErrCodeNotFound, "atlas %q not found", id))
		return
	}

	var meta atlasMeta
	raw, ok, err := s.Store.Get(ctx, s.Keyer.AtlasKey(id, "meta"))
	if err == nil && ok {
		err = json.Unmarshal(raw, &meta)
	}
	var data []byte
	if err == nil && ok {
		data, ok, err = s.Store.Get(ctx, s.Keyer.AtlasKey(id, kind))
	}
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInternal, err, "load atlas"))
		return
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, "atlas")
		s.writeError(w, r, apperr.New(apperr.ErrCodeNotFound, "atlas %q not found or expired", id))
		return
	}
	observability.Cache().OnCacheHit(ctx, "atlas")

	ct := mime.TypeByExtension("." + format(meta))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// optionsFromForm reads packing options from form fields.
func optionsFromForm(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		Padding:        pipeline.DefaultPadding,
		Packer:         r.FormValue("packer"),
		Ordering:       r.FormValue("ordering"),
		ImageFormat:    r.FormValue("image_format"),
		ResourceFormat: r.FormValue("resource_format"),
	}
	if opts.ImageFormat == "" {
		opts.ImageFormat = pipeline.FormatPNG
	}
	if opts.ResourceFormat == "" {
		opts.ResourceFormat = descio.FormatJSON
	}

	ints := map[string]*int{"border": &opts.Border, "padding": &opts.Padding, "max_size": &opts.MaxSize}
	for name, dst := range ints {
		v := r.FormValue(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, apperr.New(apperr.ErrCodeInvalidInput, "%s must be an integer, got %q", name, v)
		}
		*dst = n
	}

	bools := map[string]*bool{"pot": &opts.PowerOfTwo, "trim": &opts.Trim, "overlay": &opts.Overlay}
	for name, dst := range bools {
		v := r.FormValue(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apperr.New(apperr.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
		}
		*dst = b
	}
	return opts, nil
}

// decodeUploads decodes every file in the "sprites" field. Sprite ids come
// from the file names and must be unique.
func decodeUploads(r *http.Request, opts pipeline.Options) ([]*sprite.Sprite, error) {
	files := r.MultipartForm.File["sprites"]
	if len(files) == 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "no files in field %q", "sprites")
	}

	seen := make(map[string]bool, len(files))
	out := make([]*sprite.Sprite, 0, len(files))
	for _, fh := range files {
		if err := apperr.ValidateFilename(fh.Filename); err != nil {
			return nil, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "open %s", fh.Filename)
		}
		s, err := sprite.Decode(fh.Filename, f, sprite.LoadOptions{Trim: opts.Trim})
		f.Close()
		if err != nil {
			return nil, err
		}
		if seen[s.ID()] {
			return nil, apperr.New(apperr.ErrCodeInvalidInput, "duplicate sprite id %q", s.ID())
		}
		seen[s.ID()] = true
		out = append(out, s)
	}
	return out, nil
}
