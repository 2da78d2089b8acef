// Package media loads the images annotations are drawn on and renders
// annotation thumbnails.
//
// # Loading
//
// Images are decoded with EXIF orientation applied, so pixel coordinates
// match what an annotator sees. Decoded images are cached per path:
//
//	cache := media.NewCache()
//	info, err := media.LoadInfo(cache, "/data/frame-0001.jpg")
//	if err != nil {
//	    return err
//	}
//	roi := info.ROI() // {0, 0, width, height}
//
// Supported formats are the ones registered with the image package: PNG,
// JPEG and GIF, plus BMP and TIFF through golang.org/x/image.
//
// # Thumbnails
//
// CropShape cuts the bounding box of an annotation shape out of an image,
// optionally rescales it, and returns the result as a base64 encoded PNG
// ready to be embedded in a tool response.
package media
