// Package highlight generates the script a rendered document runs to mark
// every occurrence of the active search keyword.
package highlight

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MarkerClass identifies highlight wrappers so a later script can undo them.
const MarkerClass = "chmview-highlight"

const markerStyle = "background:#ffeb3b;color:#000;font-weight:bold;"

const clearJS = `(function () {
  var marks = document.querySelectorAll('mark.` + MarkerClass + `');
  for (var i = 0; i < marks.length; i++) {
    var mark = marks[i];
    var parent = mark.parentNode;
    if (!parent) continue;
    parent.replaceChild(document.createTextNode(mark.textContent || ''), mark);
    parent.normalize();
  }
})();
`

const markJS = `(function () {
  var source = %PATTERN%;
  if (!document.body) return;
  var re = new RegExp(source, 'gi');
  var skip = { SCRIPT: true, STYLE: true, NOSCRIPT: true, TEXTAREA: true, MARK: true };
  var walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT, {
    acceptNode: function (node) {
      if (!node.nodeValue) return NodeFilter.FILTER_REJECT;
      var parent = node.parentElement;
      if (!parent || skip[parent.tagName]) return NodeFilter.FILTER_REJECT;
      return NodeFilter.FILTER_ACCEPT;
    }
  });
  var nodes = [];
  while (walker.nextNode()) nodes.push(walker.currentNode);
  var first = null;
  nodes.forEach(function (node) {
    var text = node.nodeValue;
    re.lastIndex = 0;
    if (!re.test(text)) return;
    re.lastIndex = 0;
    var frag = document.createDocumentFragment();
    var cursor = 0;
    var m;
    while ((m = re.exec(text)) !== null) {
      if (m[0].length === 0) { re.lastIndex++; continue; }
      if (m.index > cursor) frag.appendChild(document.createTextNode(text.slice(cursor, m.index)));
      var mark = document.createElement('mark');
      mark.className = '` + MarkerClass + `';
      mark.style.cssText = '` + markerStyle + `';
      mark.textContent = m[0];
      frag.appendChild(mark);
      if (!first) first = mark;
      cursor = m.index + m[0].length;
    }
    if (cursor < text.length) frag.appendChild(document.createTextNode(text.slice(cursor)));
    node.parentNode.replaceChild(frag, node);
  });
  if (first) first.scrollIntoView({ behavior: 'smooth', block: 'center' });
})();
`

// ClearScript returns a program that only removes existing highlights.
func ClearScript() string {
	return clearJS
}

// Script returns a self-contained program that first removes any previous
// highlights, then wraps each case-insensitive occurrence of keyword in the
// document body and scrolls the first one into view. The keyword is matched
// literally. An empty keyword yields ClearScript.
func Script(keyword string) string {
	if keyword == "" {
		return clearJS
	}
	return clearJS + strings.Replace(markJS, "%PATTERN%", jsString(regexp.QuoteMeta(keyword)), 1)
}

// jsString quotes s as a JavaScript string literal. json.Marshal escapes <, >
// and & so the literal cannot close an enclosing script element.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
