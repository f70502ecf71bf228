package recorder

// getHighlighterScript returns the script injected into the remote page. It
// tracks the hovered element, computes its selector, bounding rectangle and
// boundary metadata, and reports child selectors under the established list
// container so the server can reconcile candidates against it.
func getHighlighterScript() string {
	return `
(function() {
	if (window.__scrapeRecorder) return;

	window.__scrapeRecorder = {
		candidate: null,
		getList: false,
		listSelector: '',
		paginationMode: false,

		getCandidate: function() {
			const c = this.candidate;
			this.candidate = null;
			return c;
		},

		setGetList: function(on) {
			this.getList = !!on;
		},

		setListSelector: function(selector) {
			this.listSelector = selector || '';
		},

		setPaginationMode: function(on) {
			this.paginationMode = !!on;
		},

		getSelector: function(element) {
			if (element.id) {
				return '#' + element.id;
			}

			let path = [];
			let node = element;
			while (node && node.nodeType === Node.ELEMENT_NODE) {
				let selector = node.nodeName.toLowerCase();
				if (node.className && typeof node.className === 'string') {
					selector += '.' + node.className.trim().split(/\s+/).join('.');
				}
				const parent = node.parentNode;
				if (parent && parent.nodeType === Node.ELEMENT_NODE) {
					const siblings = Array.from(parent.children).filter(
						(c) => c.nodeName === node.nodeName
					);
					if (siblings.length > 1) {
						const index = Array.from(parent.children).indexOf(node) + 1;
						selector += ':nth-child(' + index + ')';
					}
				}
				path.unshift(selector);
				node = node.parentNode;
				if (node && node.toString() === '[object ShadowRoot]') {
					path.unshift('>>');
					node = node.host;
				}
			}
			return path.join(' > ').replace(/ > >> > /g, ' >> ');
		},

		childSelectorsFor: function(element) {
			if (!this.listSelector) return [];
			const out = [];
			let containers = [];
			try {
				containers = document.querySelectorAll(this.listSelector);
			} catch (e) {
				return [];
			}
			for (const container of containers) {
				if (container.contains(element)) {
					out.push(this.getSelector(element));
				}
			}
			return out;
		},

		elementInfo: function(element) {
			const tag = element.tagName ? element.tagName.toLowerCase() : '';
			const info = {
				tagName: tag,
				hasOnlyText: element.children.length === 0,
				isIframeContent: element.ownerDocument !== document,
				isShadowRoot: element.getRootNode() instanceof ShadowRoot,
				innerText: (element.innerText || element.alt || '').trim()
			};
			if (tag === 'a' && element.href) {
				info.url = element.href;
			}
			if (tag === 'img' && element.src) {
				info.imageUrl = element.src;
			}
			return info;
		},

		report: function(element) {
			if (!element || element === document.body) return;
			const rect = element.getBoundingClientRect();
			this.candidate = {
				selector: this.getSelector(element),
				rect: {
					left: rect.left,
					top: rect.top,
					right: rect.right,
					bottom: rect.bottom
				},
				elementInfo: this.elementInfo(element),
				childSelectors: this.childSelectorsFor(element)
			};
		}
	};

	document.addEventListener('mouseover', function(event) {
		window.__scrapeRecorder.report(event.target);
	}, true);

	console.log('ScrapeFlow highlighter initialized');
})();
`
}
