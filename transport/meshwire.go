package transport

import (
	"github.com/mpcouple/coupler/errs"
	"github.com/mpcouple/coupler/mesh"
)

// SendMeshHandshake writes the wire handshake: dimensionality,
// participant name, a mesh identity int, vertex count, then the flattened
// coordinate array. There is no magic number and no version tag — existing
// deployments rely on this exact framing.
func SendMeshHandshake(t *Transport, participant string, meshID int, m *mesh.Mesh) error {
	if err := t.SendInt(m.Dimensions); err != nil {
		return err
	}
	if err := t.SendString(participant); err != nil {
		return err
	}
	if err := t.SendInt(meshID); err != nil {
		return err
	}
	if err := t.SendInt(len(m.Vertices)); err != nil {
		return err
	}
	coords := make([]float64, 0, len(m.Vertices)*m.Dimensions)
	for _, v := range m.Vertices {
		coords = append(coords, v.Coords...)
	}
	return t.SendDoubleArray(coords)
}

// MeshHandshake is the decoded form of the wire handshake SendMeshHandshake
// writes.
type MeshHandshake struct {
	Dimensions    int
	Participant   string
	MeshID        int
	VertexCoords  [][]float64
}

// ReceiveMeshHandshake decodes the handshake SendMeshHandshake wrote.
// Dimensionality mismatch against an expected value is a fatal
// ProtocolError: the meshes on each side of this connection disagree.
func ReceiveMeshHandshake(t *Transport, participant string, rank int, expectDimensions int) (*MeshHandshake, error) {
	dims, err := t.ReceiveInt()
	if err != nil {
		return nil, err
	}
	if expectDimensions != 0 && dims != expectDimensions {
		return nil, errs.Protocol(participant, rank, "dimensions", nil)
	}
	name, err := t.ReceiveString()
	if err != nil {
		return nil, err
	}
	meshID, err := t.ReceiveInt()
	if err != nil {
		return nil, err
	}
	nVerts, err := t.ReceiveInt()
	if err != nil {
		return nil, err
	}
	flat, err := t.ReceiveDoubleArray()
	if err != nil {
		return nil, err
	}
	if len(flat) != nVerts*dims {
		return nil, errs.Protocol(participant, rank, "vertex-coordinate-count", nil)
	}
	coords := make([][]float64, nVerts)
	for i := 0; i < nVerts; i++ {
		coords[i] = flat[i*dims : (i+1)*dims]
	}
	return &MeshHandshake{Dimensions: dims, Participant: name, MeshID: meshID, VertexCoords: coords}, nil
}
