package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/james-see/codecomposer/pkg/archive"
	"github.com/james-see/codecomposer/pkg/composer"
	"github.com/james-see/codecomposer/pkg/errs"
	"github.com/james-see/codecomposer/pkg/render"
	"github.com/james-see/codecomposer/pkg/style"
	"github.com/james-see/codecomposer/pkg/theory"
	"github.com/james-see/codecomposer/pkg/token"
)

// ComposeRequest is the body of POST /compose. Tokens win over Source when both are set.
type ComposeRequest struct {
	Tokens   []token.Token    `json:"tokens"`
	Source   string           `json:"source,omitempty"`
	Language string           `json:"language,omitempty"`
	Filename string           `json:"filename,omitempty"`
	Options  composer.Options `json:"options"`
	Format   string           `json:"format,omitempty"`
	Voices   string           `json:"voices,omitempty"`
	Save     bool             `json:"save,omitempty"`
}

// ComposeResponse is returned for JSON output
type ComposeResponse struct {
	ID          string                `json:"id,omitempty"`
	Composition *composer.Composition `json:"composition"`
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "codecomposer",
	})
}

// handleCompose godoc
// @Summary Compose from tokens or source
// @Description Generates a composition from a token list or from source text lexed server-side
// @Tags compose
// @Accept json
// @Produce json,audio/midi,text/plain
// @Param request body ComposeRequest true "Tokens or source plus options"
// @Success 200 {object} ComposeResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/compose [post]
func (s *Server) handleCompose(c *gin.Context) {
	var req ComposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	tokens := req.Tokens
	language := req.Language
	if tokens == nil && req.Source != "" {
		lang, err := resolveLanguage(req.Language, req.Filename)
		if err != nil {
			s.writeError(c, err)
			return
		}
		language = string(lang)
		if tokens, err = lexSource(req.Source, lang); err != nil {
			s.writeError(c, err)
			return
		}
	}

	s.respond(c, composeJob{
		tokens:   tokens,
		source:   req.Filename,
		language: language,
		options:  req.Options,
		format:   req.Format,
		voices:   req.Voices,
		save:     req.Save,
	})
}

// handleComposeUpload godoc
// @Summary Compose from an uploaded source file
// @Description Upload a .go, .c, .h or .py file and receive the composition (MIDI by default)
// @Tags compose
// @Accept multipart/form-data
// @Produce audio/midi,json,text/plain
// @Param file formData file true "Source file to compose"
// @Param style query string false "Style name (default: default)"
// @Param key query string false "Key override"
// @Param scale query string false "Scale override"
// @Param progression query string false "Progression override"
// @Param bass query string false "Bass pattern override"
// @Param instrument query string false "Instrument override, e.g. violin"
// @Param tempo query int false "Tempo override"
// @Param seed query int false "Random seed"
// @Param format query string false "midi, alda, json or tree (default: midi)"
// @Param voices query string false "melody, accompaniment or both"
// @Param save query bool false "Store in history"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/compose/upload [post]
func (s *Server) handleComposeUpload(c *gin.Context) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	// Read file content
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	lang, err := resolveLanguage(c.Query("language"), header.Filename)
	if err != nil {
		s.writeError(c, err)
		return
	}
	tokens, err := lexSource(string(data), lang)
	if err != nil {
		s.writeError(c, err)
		return
	}

	opts, err := optionsFromQuery(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.respond(c, composeJob{
		tokens:   tokens,
		source:   header.Filename,
		language: string(lang),
		options:  opts,
		format:   c.DefaultQuery("format", string(render.FormatMIDI)),
		voices:   c.Query("voices"),
		save:     c.Query("save") == "true",
	})
}

// handleTokenize godoc
// @Summary Tokenize source text
// @Description Returns the classified token stream the composer would receive
// @Tags compose
// @Accept json
// @Produce json
// @Param request body ComposeRequest true "Source and language"
// @Success 200 {object} map[string][]token.Token
// @Failure 400 {object} map[string]string
// @Router /api/v1/tokenize [post]
func handleTokenize(c *gin.Context) {
	var req ComposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	lang, err := resolveLanguage(req.Language, req.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tokens, err := lexSource(req.Source, lang)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": lang, "tokens": tokens})
}

// composeJob is a normalized compose request
type composeJob struct {
	tokens   []token.Token
	source   string
	language string
	options  composer.Options
	format   string
	voices   string
	save     bool
}

// respond composes, optionally archives, and writes the result in the requested format
func (s *Server) respond(c *gin.Context, job composeJob) {
	format := render.FormatJSON
	if job.format != "" {
		f, err := render.ParseFormat(job.format)
		if err != nil {
			s.writeError(c, err)
			return
		}
		format = f
	}
	voices, err := render.ParseVoices(job.voices)
	if err != nil {
		s.writeError(c, err)
		return
	}

	comp, err := s.composer.Compose(c.Request.Context(), job.tokens, job.options)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var id string
	if job.save {
		if s.history == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "composition history is disabled"})
			return
		}
		rec, err := s.history.Save(c.Request.Context(), archive.SaveParams{
			Source:      job.source,
			Language:    job.language,
			Options:     job.options,
			Composition: comp,
		})
		if err != nil {
			s.writeError(c, err)
			return
		}
		id = rec.ID
		c.Header("X-Composition-ID", id)
	}

	s.writeComposition(c, comp, id, format, voices, job.source)
}

func (s *Server) writeComposition(c *gin.Context, comp *composer.Composition, id string, format render.Format, voices render.Voices, source string) {
	if format == render.FormatJSON {
		c.JSON(http.StatusOK, ComposeResponse{ID: id, Composition: comp})
		return
	}

	data, err := render.Render(comp, format, voices)
	if err != nil {
		s.writeError(c, err)
		return
	}

	contentType := "text/plain; charset=utf-8"
	ext := ".txt"
	switch format {
	case render.FormatMIDI:
		contentType = "audio/midi"
		ext = ".mid"
	case render.FormatAlda:
		ext = ".alda"
	}

	outputName := "composition" + ext
	if source != "" {
		outputName = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + ext
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, contentType, data)
}

// resolveLanguage picks the explicit language, else infers it from the filename
func resolveLanguage(language, filename string) (token.Language, error) {
	if language != "" {
		lang, err := token.ParseLanguage(language)
		if err != nil {
			return "", &errs.InputError{Field: "language", Value: language, Reason: err.Error()}
		}
		return lang, nil
	}
	lang, err := token.LanguageForFile(filename)
	if err != nil {
		return "", &errs.InputError{Field: "language", Value: filename, Reason: err.Error()}
	}
	return lang, nil
}

func lexSource(src string, lang token.Language) ([]token.Token, error) {
	tokens, err := token.Lex(src, lang)
	if err != nil {
		return nil, &errs.InputError{Field: "source", Value: string(lang), Reason: err.Error()}
	}
	return tokens, nil
}

// optionsFromQuery reads composer options from query parameters
func optionsFromQuery(c *gin.Context) (composer.Options, error) {
	opts := composer.Options{
		Style:       c.Query("style"),
		Key:         c.Query("key"),
		Scale:       c.Query("scale"),
		Progression: c.Query("progression"),
		BassPattern: c.Query("bass"),
		Instrument:  c.Query("instrument"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"tempo", &opts.Tempo},
		{"bars_per_phrase", &opts.BarsPerPhrase},
		{"bars_per_token", &opts.BarsPerToken},
		{"octave", &opts.Octave},
	}
	for _, p := range ints {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, &errs.InputError{Field: p.name, Value: v, Reason: "must be an integer"}
		}
		*p.dst = n
	}

	if v := c.Query("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return opts, &errs.InputError{Field: "seed", Value: v, Reason: "must be an integer"}
		}
		opts.Seed = seed
	}
	opts.Parallel = c.Query("parallel") == "true"
	return opts, nil
}

// listStyles godoc
// @Summary List styles
// @Description Returns every registered style with its defaults
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]style.Style
// @Router /api/v1/styles [get]
func (s *Server) listStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": s.composer.Styles().Styles()})
}

// getStyle godoc
// @Summary Get a style
// @Tags info
// @Produce json
// @Param name path string true "Style name"
// @Success 200 {object} style.Style
// @Failure 404 {object} map[string]string
// @Router /api/v1/styles/{name} [get]
func (s *Server) getStyle(c *gin.Context) {
	st, err := s.composer.Styles().Resolve(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

// listScales godoc
// @Summary List scales
// @Description Returns registered scales with their default and known progressions
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]theory.ScaleDef
// @Router /api/v1/scales [get]
func listScales(c *gin.Context) {
	names := theory.ScaleNames()
	scales := make([]theory.ScaleDef, 0, len(names))
	for _, name := range names {
		def, _ := theory.LookupScale(name)
		scales = append(scales, def)
	}
	c.JSON(http.StatusOK, gin.H{"scales": scales})
}

// previewScale godoc
// @Summary Preview a scale
// @Description Returns the scale played up and down as an Alda score
// @Tags info
// @Produce plain
// @Param name path string true "Scale name"
// @Param key query string false "Tonic (default: C)"
// @Param tempo query int false "Tempo (default: 120)"
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Router /api/v1/scales/{name}/preview [get]
func previewScale(c *gin.Context) {
	tempo, _ := strconv.Atoi(c.Query("tempo"))
	alda, err := render.ScalePreview(c.DefaultQuery("key", "C"), c.Param("name"), tempo)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(alda))
}

// ProgressionInfo describes one progression resolved in a key and scale
type ProgressionInfo struct {
	Name       string          `json:"name"`
	Default    bool            `json:"default"`
	Compatible bool            `json:"compatible"`
	Preview    *render.Preview `json:"preview,omitempty"`
}

// listProgressions godoc
// @Summary List progressions for a scale
// @Description Returns the scale's registered progressions resolved in the given key
// @Tags info
// @Produce json
// @Param key query string false "Tonic (default: C)"
// @Param scale query string false "Scale (default: major)"
// @Success 200 {object} map[string][]ProgressionInfo
// @Failure 400 {object} map[string]string
// @Router /api/v1/progressions [get]
func listProgressions(c *gin.Context) {
	key := c.DefaultQuery("key", "C")
	scale := c.DefaultQuery("scale", "major")

	def, ok := theory.LookupScale(scale)
	if !ok {
		err := &errs.ConfigurationError{Kind: "scale", Name: scale, Reason: "not registered"}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	progressions := make([]ProgressionInfo, 0, len(def.Progressions))
	for _, name := range def.Progressions {
		info := ProgressionInfo{
			Name:       name,
			Default:    name == def.DefaultProgression,
			Compatible: theory.Compatible(key, scale, name),
		}
		if info.Compatible {
			p, err := render.ProgressionPreview(key, scale, name, 0)
			if err != nil {
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			info.Preview = p
		}
		progressions = append(progressions, info)
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "scale": scale, "progressions": progressions})
}

// listBassPatterns godoc
// @Summary List bass patterns
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/bass-patterns [get]
func listBassPatterns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bass_patterns": style.BassPatterns()})
}

// listInstruments godoc
// @Summary List instruments
// @Description Returns instrument names with their General MIDI programs
// @Tags info
// @Produce json
// @Success 200 {object} map[string]map[string]int
// @Router /api/v1/instruments [get]
func listInstruments(c *gin.Context) {
	programs := make(map[string]int)
	for _, name := range style.Instruments() {
		programs[name] = int(style.InstrumentProgram(name))
	}
	c.JSON(http.StatusOK, gin.H{"default": style.DefaultInstrument, "instruments": programs})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported output formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":    []string{"json", "midi", "alda", "tree"},
		"extensions": render.SupportedFormats(),
		"languages":  token.Languages(),
	})
}

// listCompositions godoc
// @Summary List saved compositions
// @Tags history
// @Produce json
// @Param style query string false "Filter by style"
// @Param limit query int false "Maximum records (default: 20)"
// @Success 200 {object} map[string][]archive.Record
// @Failure 503 {object} map[string]string
// @Router /api/v1/compositions [get]
func (s *Server) listCompositions(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := s.history.List(c.Request.Context(), archive.ListParams{Style: c.Query("style"), Limit: limit})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"compositions": records})
}

// getComposition godoc
// @Summary Get a saved composition
// @Tags history
// @Produce json,audio/midi,text/plain
// @Param id path string true "Composition ID"
// @Param format query string false "json, midi, alda or tree (default: json)"
// @Param voices query string false "melody, accompaniment or both"
// @Success 200 {object} ComposeResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/compositions/{id} [get]
func (s *Server) getComposition(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	format, err := render.ParseFormat(c.DefaultQuery("format", string(render.FormatJSON)))
	if err != nil {
		s.writeError(c, err)
		return
	}
	voices, err := render.ParseVoices(c.Query("voices"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	rec, comp, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.writeComposition(c, comp, rec.ID, format, voices, rec.Source)
}

// deleteComposition godoc
// @Summary Delete a saved composition
// @Tags history
// @Param id path string true "Composition ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/v1/compositions/{id} [delete]
func (s *Server) deleteComposition(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	if err := s.history.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) requireHistory(c *gin.Context) bool {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "composition history is disabled"})
		return false
	}
	return true
}
