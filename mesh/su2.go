package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dgsolve/gomcl/utils"
)

// SU2 element type codes, https://su2code.github.io/docs_v7/Mesh-File/
type su2ElementType uint8

const (
	elTypeLine     su2ElementType = 3
	elTypeTriangle su2ElementType = 5
)

// bcTagFromLabel maps the marker labels of a mesh file onto the
// boundary classes the evolution operator knows about.
func bcTagFromLabel(label string) BCTag {
	switch strings.ToLower(label) {
	case "wall", "airfoil", "cylinder":
		return BCWall
	default:
		return BCFar
	}
}

/*
ReadSU2 reads a 2D triangular SU2 mesh file into a Mesh, connecting the
elements and tagging the boundary faces from the marker sections. Vertex
pairs listed under a marker override the default far-field tag.
*/
func ReadSU2(filename string) (msh *Mesh) {
	file, err := os.Open(filename)
	if err != nil {
		panic(fmt.Errorf("unable to open mesh file %s: %w", filename, err))
	}
	defer file.Close()
	reader := bufio.NewReader(file)

	if dim := readNumber(reader); dim != 2 {
		panic(fmt.Errorf("mesh file %s is %d dimensional, want 2", filename, dim))
	}
	K, EToV := readElements(reader)
	VX, VY := readVertices(reader)
	bcVerts := readMarkers(reader)

	msh = &Mesh{
		Dim:    2,
		K:      K,
		NVerts: 3,
		NFaces: 3,
		VX:     VX,
		VY:     VY,
		EToV:   EToV,
		EToE:   utils.NewMatrix(K, 3),
		EToF:   utils.NewMatrix(K, 3),
	}
	msh.Connect()
	applyMarkers(msh, bcVerts)
	return
}

func readElements(reader *bufio.Reader) (K int, EToV utils.Matrix) {
	var (
		nType      int
		v1, v2, v3 int
	)
	K = readNumber(reader)
	EToV = utils.NewMatrix(K, 3)
	for k := 0; k < K; k++ {
		line := getLine(reader)
		n, err := fmt.Sscanf(line, "%d %d %d %d", &nType, &v1, &v2, &v3)
		if err != nil || n != 4 {
			panic(fmt.Errorf("unable to read element %d from line [%s]", k, line))
		}
		if su2ElementType(nType) != elTypeTriangle {
			panic(fmt.Errorf("element %d has type %d, only triangles are supported", k, nType))
		}
		EToV.Set(k, 0, float64(v1))
		EToV.Set(k, 1, float64(v2))
		EToV.Set(k, 2, float64(v3))
	}
	return
}

func readVertices(reader *bufio.Reader) (VX, VY utils.Vector) {
	var x, y float64
	Nv := readNumber(reader)
	VX, VY = utils.NewVector(Nv), utils.NewVector(Nv)
	for i := 0; i < Nv; i++ {
		line := getLine(reader)
		n, err := fmt.Sscanf(line, "%f %f", &x, &y)
		if err != nil || n != 2 {
			panic(fmt.Errorf("unable to read vertex %d from line [%s]", i, line))
		}
		VX.DataP[i], VY.DataP[i] = x, y
	}
	return
}

// readMarkers returns the tag of every boundary vertex pair, keyed by
// the pair with the lower vertex first.
func readMarkers(reader *bufio.Reader) (bcVerts map[[2]int]BCTag) {
	var (
		nType  int
		v1, v2 int
	)
	bcVerts = make(map[[2]int]BCTag)
	nMarkers := readNumber(reader)
	for m := 0; m < nMarkers; m++ {
		tag := bcTagFromLabel(readLabel(reader))
		nEdges := readNumber(reader)
		for i := 0; i < nEdges; i++ {
			line := getLine(reader)
			n, err := fmt.Sscanf(line, "%d %d %d", &nType, &v1, &v2)
			if err != nil || n != 3 {
				panic(fmt.Errorf("unable to read marker edge from line [%s]", line))
			}
			if su2ElementType(nType) != elTypeLine {
				panic(fmt.Errorf("marker edge has type %d, want line", nType))
			}
			if v2 < v1 {
				v1, v2 = v2, v1
			}
			bcVerts[[2]int{v1, v2}] = tag
		}
	}
	return
}

func applyMarkers(msh *Mesh, bcVerts map[[2]int]BCTag) {
	fv := msh.FaceVerts()
	for k := 0; k < msh.K; k++ {
		for f := 0; f < msh.NFaces; f++ {
			if !msh.IsBoundaryFace(k, f) {
				continue
			}
			var (
				v1 = msh.Vertex(k, fv[f][0])
				v2 = msh.Vertex(k, fv[f][1])
			)
			if v2 < v1 {
				v1, v2 = v2, v1
			}
			if tag, ok := bcVerts[[2]int{v1, v2}]; ok {
				msh.BCTags[k][f] = tag
			}
		}
	}
}

func getLine(reader *bufio.Reader) (line string) {
	for {
		text, err := reader.ReadString('\n')
		if err != nil && len(text) == 0 {
			panic(fmt.Errorf("unexpected end of mesh file"))
		}
		line = strings.TrimSpace(text)
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			return
		}
	}
}

func getToken(reader *bufio.Reader) (token string) {
	line := getLine(reader)
	ind := strings.Index(line, "=")
	if ind < 0 {
		panic(fmt.Errorf("badly formed input line [%s], should have an =", line))
	}
	token = strings.TrimSpace(line[ind+1:])
	return
}

func readLabel(reader *bufio.Reader) (label string) {
	label = getToken(reader)
	if len(label) == 0 {
		panic(fmt.Errorf("empty marker label"))
	}
	return
}

func readNumber(reader *bufio.Reader) (num int) {
	token := getToken(reader)
	if _, err := fmt.Sscanf(token, "%d", &num); err != nil {
		panic(fmt.Errorf("unable to read number from token [%s]", token))
	}
	return
}
