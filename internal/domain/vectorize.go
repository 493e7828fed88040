package domain

// VectorizeRequest identifies the raster image to be converted to SVG.
// Either Path or Data is set; Filename is used for the upload form part.
type VectorizeRequest struct {
	Path     string
	Filename string
	Data     []byte
}

// VectorizeResult holds the remote SVG location and the local copy.
type VectorizeResult struct {
	SVGURL    string
	LocalPath string
}
