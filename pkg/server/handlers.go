package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/asegale/ashlar/pkg/clash"
	"github.com/asegale/ashlar/pkg/kernel"
	"github.com/asegale/ashlar/pkg/kernel/sdfx"
	"github.com/asegale/ashlar/pkg/lifecycle"
	"github.com/asegale/ashlar/pkg/model"
	"github.com/asegale/ashlar/pkg/plan"
	"github.com/asegale/ashlar/pkg/tessellate"
	"github.com/asegale/ashlar/pkg/wkt"
	"github.com/gorilla/mux"
)

// round4 is the reporting precision for scalar measures (volumes,
// areas) on the query surface.
func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

func (s *Server) kernel() kernel.Kernel {
	return sdfx.NewWithCells(s.cfg.MeshCells)
}

// elementMesh resolves an element to its exact-kernel mesh, with
// openings subtracted.
func elementMesh(m *model.Model, k kernel.Kernel, id string) (*kernel.Mesh, *httpError) {
	solid, err := model.NewSolidProvider(m, k).Solid(id)
	if err != nil {
		return nil, fromError(err)
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, unprocessable("tessellation failed: " + err.Error())
	}
	return mesh, nil
}

// ---------------------------------------------------------------------------
// Element queries
// ---------------------------------------------------------------------------

type elementInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Storey string `json:"storey,omitempty"`

	// Volume and SurfaceArea come from the analytic tessellation of
	// the base shape and are omitted for elements without geometry.
	Volume      *float64 `json:"volume,omitempty"`
	SurfaceArea *float64 `json:"surfaceArea,omitempty"`
}

func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	m, herr := s.loadModel(r.URL.Query().Get("model"))
	if herr != nil {
		writeError(w, herr)
		return
	}

	elems := m.Elements()
	if t := r.URL.Query().Get("type"); t != "" {
		elems = m.ElementsOfType(t)
	}

	out := make([]elementInfo, 0, len(elems))
	for _, e := range elems {
		info := elementInfo{ID: e.GlobalID, Name: e.Name, Type: e.IfcType, Storey: e.Storey}
		if mesh, err := tessellate.Element(e); err == nil && !mesh.IsEmpty() {
			v := round4(mesh.Volume())
			a := round4(mesh.SurfaceArea())
			info.Volume = &v
			info.SurfaceArea = &a
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

type meshPayload struct {
	ID            string    `json:"id"`
	Vertices      []float64 `json:"vertices"`
	Indices       []uint32  `json:"indices"`
	VertexCount   int       `json:"vertexCount"`
	TriangleCount int       `json:"triangleCount"`
}

func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	m, herr := s.loadModel(r.URL.Query().Get("model"))
	if herr != nil {
		writeError(w, herr)
		return
	}
	id := mux.Vars(r)["id"]

	mesh, herr := elementMesh(m, s.kernel(), id)
	if herr != nil {
		writeError(w, herr)
		return
	}
	writeJSON(w, http.StatusOK, meshPayload{
		ID:            id,
		Vertices:      mesh.Vertices,
		Indices:       mesh.Indices,
		VertexCount:   mesh.VertexCount(),
		TriangleCount: mesh.TriangleCount(),
	})
}

// scalarHandler factors the volume and surface-area endpoints: resolve
// the element mesh, measure it, respond with one rounded number.
func (s *Server) scalarHandler(field string, measure func(*kernel.Mesh) float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, herr := s.loadModel(r.URL.Query().Get("model"))
		if herr != nil {
			writeError(w, herr)
			return
		}
		id := mux.Vars(r)["id"]

		mesh, herr := elementMesh(m, s.kernel(), id)
		if herr != nil {
			writeError(w, herr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":  id,
			field: round4(measure(mesh)),
		})
	}
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	s.scalarHandler("volume", (*kernel.Mesh).Volume)(w, r)
}

func (s *Server) handleSurfaceArea(w http.ResponseWriter, r *http.Request) {
	s.scalarHandler("surfaceArea", (*kernel.Mesh).SurfaceArea)(w, r)
}

// queryFloat parses an optional float query parameter, returning nil
// when absent.
func queryFloat(r *http.Request, name string) (*float64, *httpError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badRequest("invalid " + name + ": " + raw)
	}
	return &f, nil
}

func (s *Server) handleMaterialUsage(w http.ResponseWriter, r *http.Request) {
	m, herr := s.loadModel(r.URL.Query().Get("model"))
	if herr != nil {
		writeError(w, herr)
		return
	}
	id := mux.Vars(r)["id"]

	density, herr := queryFloat(r, "density")
	if herr != nil {
		writeError(w, herr)
		return
	}

	e := m.Element(id)
	if e == nil {
		writeError(w, notFound("element "+id+" not found"))
		return
	}
	mesh, herr := elementMesh(m, s.kernel(), id)
	if herr != nil {
		writeError(w, herr)
		return
	}

	vol := round4(mesh.Volume())
	mass := lifecycle.MaterialUsage(vol, e.IfcType, lifecycle.DefaultTable(), density)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "volume": vol, "massKg": mass})
}

func (s *Server) handleEmbodiedCarbon(w http.ResponseWriter, r *http.Request) {
	m, herr := s.loadModel(r.URL.Query().Get("model"))
	if herr != nil {
		writeError(w, herr)
		return
	}
	id := mux.Vars(r)["id"]

	density, herr := queryFloat(r, "density")
	if herr != nil {
		writeError(w, herr)
		return
	}
	factor, herr := queryFloat(r, "factor")
	if herr != nil {
		writeError(w, herr)
		return
	}

	e := m.Element(id)
	if e == nil {
		writeError(w, notFound("element "+id+" not found"))
		return
	}
	mesh, herr := elementMesh(m, s.kernel(), id)
	if herr != nil {
		writeError(w, herr)
		return
	}

	vol := round4(mesh.Volume())
	carbon := lifecycle.EmbodiedCarbon(vol, e.IfcType, lifecycle.DefaultTable(), factor, density)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "volume": vol, "kgCO2e": carbon})
}

func (s *Server) handleStoreys(w http.ResponseWriter, r *http.Request) {
	m, herr := s.loadModel(r.URL.Query().Get("model"))
	if herr != nil {
		writeError(w, herr)
		return
	}
	writeJSON(w, http.StatusOK, m.Storeys())
}

// ---------------------------------------------------------------------------
// Clash detection
// ---------------------------------------------------------------------------

type detectRequest struct {
	Model string   `json:"model"`
	Types []string `json:"types,omitempty"`
}

func (s *Server) handleClashDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if herr := decodeJSON(r, &req); herr != nil {
		writeError(w, herr)
		return
	}
	m, herr := s.loadModel(req.Model)
	if herr != nil {
		writeError(w, herr)
		return
	}

	types := req.Types
	if len(types) == 0 {
		types = s.cfg.ClashTypes
	}

	k := s.kernel()
	report, err := clash.DetectAll(r.Context(), clash.Candidates(m.Elements()),
		model.NewSolidProvider(m, k), k, clash.Options{Types: types})
	if err != nil {
		writeError(w, internal(err))
		return
	}
	if report.Clashes == nil {
		report.Clashes = []clash.Result{}
	}
	writeJSON(w, http.StatusOK, report)
}

type pairRequest struct {
	Model string `json:"model"`
	A     string `json:"a"`
	B     string `json:"b"`
}

func (s *Server) handleClashPair(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if herr := decodeJSON(r, &req); herr != nil {
		writeError(w, herr)
		return
	}
	if req.A == "" || req.B == "" {
		writeError(w, badRequest("both element ids a and b are required"))
		return
	}
	m, herr := s.loadModel(req.Model)
	if herr != nil {
		writeError(w, herr)
		return
	}

	k := s.kernel()
	res, err := clash.PairVolume(model.NewSolidProvider(m, k), k, req.A, req.B)
	if err != nil {
		writeError(w, fromError(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type planRequest struct {
	Model         string   `json:"model"`
	Storey        string   `json:"storey,omitempty"`
	AType         string   `json:"aType"`
	BType         string   `json:"bType"`
	ZTolerance    *float64 `json:"zTolerance,omitempty"`
	AreaTolerance *float64 `json:"areaTolerance,omitempty"`
	ReturnWKT     bool     `json:"returnWkt,omitempty"`
}

func (s *Server) planOptions(req planRequest) plan.Options {
	opts := plan.Options{
		ZTolerance:    *s.cfg.ZTolerance,
		AreaTolerance: *s.cfg.AreaTolerance,
		ReturnWKT:     req.ReturnWKT,
	}
	if req.ZTolerance != nil {
		opts.ZTolerance = *req.ZTolerance
	}
	if req.AreaTolerance != nil {
		opts.AreaTolerance = *req.AreaTolerance
	}
	return opts
}

func (s *Server) handlePlanClash(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if herr := decodeJSON(r, &req); herr != nil {
		writeError(w, herr)
		return
	}
	if req.AType == "" || req.BType == "" {
		writeError(w, badRequest("aType and bType are required"))
		return
	}
	m, herr := s.loadModel(req.Model)
	if herr != nil {
		writeError(w, herr)
		return
	}

	report, err := plan.DetectTypeOverlaps(r.Context(), m, tessellate.Provider{M: m},
		req.AType, req.BType, s.planOptions(req))
	if err != nil {
		writeError(w, internal(err))
		return
	}
	if report.Overlaps == nil {
		report.Overlaps = []plan.Result{}
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePlanClashStorey(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if herr := decodeJSON(r, &req); herr != nil {
		writeError(w, herr)
		return
	}
	if req.AType == "" || req.BType == "" {
		writeError(w, badRequest("aType and bType are required"))
		return
	}
	if req.Storey == "" {
		writeError(w, badRequest("storey is required"))
		return
	}
	m, herr := s.loadModel(req.Model)
	if herr != nil {
		writeError(w, herr)
		return
	}

	// The storey may be named by GlobalID or by display name.
	storeyID := req.Storey
	if m.Storey(storeyID) == nil {
		if st := m.StoreyByName(req.Storey); st != nil {
			storeyID = st.GlobalID
		} else {
			writeError(w, notFound("storey "+req.Storey+" not found"))
			return
		}
	}

	report, err := plan.DetectStoreyOverlaps(r.Context(), m, tessellate.Provider{M: m},
		storeyID, req.AType, req.BType, s.planOptions(req))
	if err != nil {
		writeError(w, internal(err))
		return
	}
	if report.Overlaps == nil {
		report.Overlaps = []plan.Result{}
	}
	writeJSON(w, http.StatusOK, report)
}

// ---------------------------------------------------------------------------
// WKT utilities
// ---------------------------------------------------------------------------

type wktRequest struct {
	WKT string `json:"wkt"`
}

type wktPairRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

func (s *Server) handleWKTArea(w http.ResponseWriter, r *http.Request) {
	var req wktRequest
	if herr := decodeJSON(r, &req); herr != nil {
		writeError(w, herr)
		return
	}
	area, err := wkt.Area(req.WKT)
	if err != nil {
		writeError(w, badRequest("invalid wkt: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"area": area})
}

func (s *Server) handleWKTPerimeter(w http.ResponseWriter, r *http.Request) {
	var req wktRequest
	if herr := decodeJSON(r, &req); herr != nil {
		writeError(w, herr)
		return
	}
	p, err := wkt.Perimeter(req.WKT)
	if err != nil {
		writeError(w, badRequest("invalid wkt: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"perimeter": p})
}

func (s *Server) handleWKTIntersects(w http.ResponseWriter, r *http.Request) {
	var req wktPairRequest
	if herr := decodeJSON(r, &req); herr != nil {
		writeError(w, herr)
		return
	}
	hit, err := wkt.Intersects(req.A, req.B)
	if err != nil {
		writeError(w, badRequest("invalid wkt: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"intersects": hit})
}
