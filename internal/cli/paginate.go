package cli

import "fmt"

// TotalPages returns the number of pages needed to show total items at
// pageSize per page: ceil(total/pageSize). Zero items is one empty page.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// PageBounds returns the 1-based index range shown on the given page,
// e.g. page 3 of 23 items at 10/page is (21, 23).
func PageBounds(page, pageSize, total int) (start, end int) {
	if total == 0 {
		return 0, 0
	}
	start = (page-1)*pageSize + 1
	end = page * pageSize
	if end > total {
		end = total
	}
	return start, end
}

// PageFooter renders the standard pagination footer, e.g.
// "21-23 of 23 (page 3/3)".
func PageFooter(page, pageSize, total int) string {
	start, end := PageBounds(page, pageSize, total)
	return fmt.Sprintf("%d-%d of %d (page %d/%d)", start, end, total, page, TotalPages(total, pageSize))
}
