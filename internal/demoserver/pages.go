package demoserver

import "github.com/raysh454/vertex/internal/scanner"

// PageVersion represents a specific version of a page with its HTML content and headers.
type PageVersion struct {
	HTML        string
	ContentType string
	Headers     map[string]string
}

// PageDefinition holds all versions of a single page. Version 1 carries the
// accessibility problems, version 2 fixes them.
type PageDefinition struct {
	Path        string
	Description string

	// Categories are the issue types version 1 is built to trigger.
	Categories []scanner.Category
	Versions   map[int]PageVersion
}

// GetAllPages returns all demo page definitions.
func GetAllPages() []PageDefinition {
	return []PageDefinition{
		getHomePage(),
		getImagesPage(),
		getContrastPage(),
		getKeyboardPage(),
		getStructurePage(),
		getFormsPage(),
		getMediaPage(),
		getZoomPage(),
	}
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>`

// page wraps body in a landmarked document so each fixture only differs in
// the category it demonstrates.
func page(title, body string) string {
	return pageHead + title + `</title>
</head>
<body>
    <header><a href="/">Vertex demo shop</a></header>
    <nav><a href="/images">Gallery</a> <a href="/forms">Contact</a></nav>
    <main>
        <h1>` + title + `</h1>
` + body + `
    </main>
    <footer>Demo content</footer>
</body>
</html>`
}

// ===== HOME PAGE =====

func getHomePage() PageDefinition {
	return PageDefinition{
		Path:        "/",
		Description: "Landing page mixing problems from every category",
		Categories: []scanner.Category{
			scanner.CategoryImages, scanner.CategoryContrast, scanner.CategoryKeyboard,
			scanner.CategorySemantic, scanner.CategoryForms, scanner.CategoryZoom,
		},
		Versions: map[int]PageVersion{
			1: {HTML: `<!DOCTYPE html>
<html>
<head>
    <meta name="viewport" content="width=device-width, maximum-scale=1">
    <title>Demo shop</title>
    <style>
        .promo { color: #aaaaaa; background: #ffffff; }
        .card { cursor: pointer; }
    </style>
</head>
<body>
    <div class="top"><img src="/static/logo.png"></div>
    <div class="content">
        <h3>Welcome</h3>
        <p class="promo">Spring sale: everything is twenty percent off this week.</p>
        <div class="card" onclick="location='/keyboard'">Browse products</div>
        <input type="email" placeholder="Your email">
    </div>
</body>
</html>`},
			2: {HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Demo shop</title>
    <style>
        .promo { color: #333333; background: #ffffff; }
    </style>
</head>
<body>
    <header><img src="/static/logo.png" alt="Demo shop logo"></header>
    <nav><a href="/images">Images</a> <a href="/forms">Forms</a></nav>
    <main>
        <h1>Welcome</h1>
        <p class="promo">Spring sale: everything is twenty percent off this week.</p>
        <a href="/keyboard">Browse products</a>
        <label for="email">Your email</label>
        <input id="email" type="email">
    </main>
    <footer>Demo content</footer>
</body>
</html>`},
		},
	}
}

// ===== PER-CATEGORY PAGES =====

func getImagesPage() PageDefinition {
	return PageDefinition{
		Path:        "/images",
		Description: "Images without alternative text",
		Categories:  []scanner.Category{scanner.CategoryImages},
		Versions: map[int]PageVersion{
			1: {HTML: page("Product gallery", `
        <img src="/static/shoe.jpg?size=large">
        <img src="/static/bag.jpg" alt="">
        <img src="/static/divider.png" aria-hidden="true">`)},
			2: {HTML: page("Product gallery", `
        <img src="/static/shoe.jpg?size=large" alt="Red running shoe">
        <img src="/static/bag.jpg" alt="Leather shoulder bag">
        <img src="/static/divider.png" aria-hidden="true">`)},
		},
	}
}

func getContrastPage() PageDefinition {
	return PageDefinition{
		Path:        "/contrast",
		Description: "Low contrast body and large text",
		Categories:  []scanner.Category{scanner.CategoryContrast},
		Versions: map[int]PageVersion{
			1: {HTML: page("Shipping information", `
        <p style="color:#999999">Orders ship within two business days of payment.</p>
        <p style="color:#777777; background-color:#eeeeee">Returns are accepted for thirty days.</p>
        <h2 style="color:#aaaaaa; font-size:24px">Questions about delivery</h2>`)},
			2: {HTML: page("Shipping information", `
        <p style="color:#333333">Orders ship within two business days of payment.</p>
        <p style="color:#222222; background-color:#eeeeee">Returns are accepted for thirty days.</p>
        <h2 style="color:#555555; font-size:24px">Questions about delivery</h2>`)},
		},
	}
}

func getKeyboardPage() PageDefinition {
	return PageDefinition{
		Path:        "/keyboard",
		Description: "Clickable elements that cannot be reached with the keyboard",
		Categories:  []scanner.Category{scanner.CategoryKeyboard},
		Versions: map[int]PageVersion{
			1: {HTML: page("Products", `
        <div onclick="addToCart(1)">Add shoe to cart</div>
        <span style="cursor:pointer" onclick="addToCart(2)">Add bag to cart</span>
        <ul><li onclick="filter('new')">New arrivals</li></ul>`)},
			2: {HTML: page("Products", `
        <button onclick="addToCart(1)">Add shoe to cart</button>
        <span role="button" tabindex="0" style="cursor:pointer" onclick="addToCart(2)">Add bag to cart</span>
        <ul><li><a href="?filter=new">New arrivals</a></li></ul>`)},
		},
	}
}

func getStructurePage() PageDefinition {
	return PageDefinition{
		Path:        "/structure",
		Description: "Missing landmarks and skipped heading levels",
		Categories:  []scanner.Category{scanner.CategorySemantic},
		Versions: map[int]PageVersion{
			1: {HTML: `<!DOCTYPE html>
<html lang="en">
<head><title>About us</title></head>
<body>
    <div class="header">Demo shop</div>
    <div class="body">
        <h1>About us</h1>
        <h4>Our history</h4>
        <p>Founded as a small workshop.</p>
        <h2>Our team</h2>
    </div>
</body>
</html>`},
			2: {HTML: page("About us", `
        <h2>Our history</h2>
        <p>Founded as a small workshop.</p>
        <h2>Our team</h2>`)},
		},
	}
}

func getFormsPage() PageDefinition {
	return PageDefinition{
		Path:        "/forms",
		Description: "Form controls without labels",
		Categories:  []scanner.Category{scanner.CategoryForms},
		Versions: map[int]PageVersion{
			1: {HTML: page("Contact", `
        <form>
            <input type="text" name="name" placeholder="Name">
            <select name="topic"><option>Orders</option></select>
            <textarea name="message"></textarea>
            <input type="hidden" name="token" value="abc">
            <button type="submit">Send</button>
        </form>`)},
			2: {HTML: page("Contact", `
        <form>
            <label for="name">Name</label>
            <input id="name" type="text" name="name">
            <label>Topic <select name="topic"><option>Orders</option></select></label>
            <span id="msg-label">Message</span>
            <textarea name="message" aria-labelledby="msg-label"></textarea>
            <input type="hidden" name="token" value="abc">
            <button type="submit">Send</button>
        </form>`)},
		},
	}
}

func getMediaPage() PageDefinition {
	return PageDefinition{
		Path:        "/media",
		Description: "Video without captions",
		Categories:  []scanner.Category{scanner.CategoryMedia},
		Versions: map[int]PageVersion{
			1: {HTML: page("How it is made", `
        <video controls src="/static/workshop.mp4"></video>`)},
			2: {HTML: page("How it is made", `
        <video controls src="/static/workshop.mp4">
            <track kind="captions" src="/static/workshop.vtt" srclang="en" label="English">
        </video>`)},
		},
	}
}

func getZoomPage() PageDefinition {
	return PageDefinition{
		Path:        "/zoom",
		Description: "Viewport that blocks pinch zoom",
		Categories:  []scanner.Category{scanner.CategoryZoom},
		Versions: map[int]PageVersion{
			1: {HTML: `<!DOCTYPE html>
<html lang="en">
<head>
    <meta name="viewport" content="width=device-width, initial-scale=1, user-scalable=no">
    <title>Size guide</title>
</head>
<body><header>Demo shop</header><main><h1>Size guide</h1><p>Measure your foot from heel to toe.</p></main><footer>Demo content</footer></body>
</html>`},
			2: {HTML: page("Size guide", `
        <p>Measure your foot from heel to toe.</p>`)},
		},
	}
}
