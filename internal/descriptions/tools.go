package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	TimetableExtractDescription = `Extract the weekly class timetable of one section from a section-wise timetable PDF.

**When to use:** A student or staff member needs the classes of a specific section (for example "BE-CSE-2A") as structured data.

**Why it's useful:** The PDF is a visual grid. This tool rebuilds the grid from text positions and returns one entry per class with day, time slot, subject code, room, group and raw cell text.

**Examples:**
• Weekly schedule: "Get the timetable for section BE-CSE-2A"
• Another document: "Extract BE-CSE-2B from 'CSE 2nd Year Section Wise.pdf'"

**Output:** A summary line followed by the entries as JSON. Fields that could not be recognised in a cell are null. A section that is not in the document is reported as not found rather than as an error.

**Best practices:** Use the exact section label as printed on the page. Matching is by prefix, so "BE-CSE-2A" also matches "BE-CSE-2A (Block A)".`

	TimetableDocumentInfoDescription = `Validate a timetable PDF and report its page count, PDF version and which pages carry a section.

**When to use:** Before extracting, to confirm the document opens and to see whether a section is present.

**Examples:**
• Check the default document: "Is the timetable PDF readable?"
• Locate a section: "Which pages mention BE-CSE-2A?"

**Best practices:** Pass a section to get matched pages and the number of entries the extractor would return.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"timetable_extract":       TimetableExtractDescription,
	"timetable_document_info": TimetableDocumentInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the sorted names of all available tools
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
