package classifier

import "jobhub/internal/model"

// jobKeyword 是一条有序的职位分类规则，表顺序即优先级。
type jobKeyword struct {
	keyword  string
	category model.Category
}

// jobKeywordTable 按优先级列出关键词到职位分类的映射。
// 长度不超过 3 的纯字母数字关键词在匹配时使用单词边界正则，其余使用子串匹配。
var jobKeywordTable = []jobKeyword{
	// 技术 - 开发
	{"frontend", "前端开发"},
	{"front-end", "前端开发"},
	{"react", "前端开发"},
	{"vue", "前端开发"},
	{"angular", "前端开发"},
	{"javascript", "前端开发"},
	{"typescript", "前端开发"},
	{"web developer", "前端开发"},

	{"backend", "后端开发"},
	{"back-end", "后端开发"},
	{"java", "后端开发"},
	{"python", "后端开发"},
	{"golang", "后端开发"},
	{"go lang", "后端开发"},
	{"node.js", "后端开发"},
	{"ruby", "后端开发"},
	{"php", "后端开发"},
	{"rust", "后端开发"},
	{"c++", "后端开发"},
	{"c#", "后端开发"},
	{".net", "后端开发"},

	{"fullstack", "全栈开发"},
	{"full-stack", "全栈开发"},
	{"full stack", "全栈开发"},

	{"ios", "移动开发"},
	{"android", "移动开发"},
	{"mobile", "移动开发"},
	{"flutter", "移动开发"},
	{"react native", "移动开发"},
	{"swift", "移动开发"},
	{"kotlin", "移动开发"},

	{"algorithm", "算法工程师"},
	{"machine learning", "算法工程师"},
	{"deep learning", "算法工程师"},
	{"ai engineer", "算法工程师"},
	{"nlp", "算法工程师"},
	{"cv", "算法工程师"},
	{"computer vision", "算法工程师"},

	{"data engineer", "数据开发"},
	{"etl", "数据开发"},
	{"spark", "数据开发"},
	{"hadoop", "数据开发"},

	{"server", "服务器开发"},
	{"distributed system", "服务器开发"},

	{"devops", "运维/SRE"},
	{"sre", "运维/SRE"},
	{"site reliability", "运维/SRE"},
	{"sysadmin", "运维/SRE"},
	{"infrastructure", "运维/SRE"},
	{"kubernetes", "运维/SRE"},
	{"docker", "运维/SRE"},
	{"aws", "运维/SRE"},
	{"cloud", "运维/SRE"},

	{"qa", "测试/QA"},
	{"quality assurance", "测试/QA"},
	{"test", "测试/QA"},
	{"testing", "测试/QA"},
	{"automation", "测试/QA"},

	{"security", "网络安全"},
	{"cyber", "网络安全"},
	{"infosec", "网络安全"},
	{"penetration", "网络安全"},

	{"kernel", "操作系统/内核"},
	{"os", "操作系统/内核"},
	{"linux kernel", "操作系统/内核"},
	{"driver", "操作系统/内核"},

	{"support engineer", "技术支持"},
	{"technical support", "技术支持"},
	{"customer success engineer", "技术支持"},

	{"hardware", "硬件开发"},
	{"embedded", "硬件开发"},
	{"firmware", "硬件开发"},
	{"fpga", "硬件开发"},

	{"architect", "架构师"},
	{"architecture", "架构师"},

	{"cto", "CTO/技术管理"},
	{"vp of engineering", "CTO/技术管理"},
	{"engineering manager", "CTO/技术管理"},
	{"tech lead", "CTO/技术管理"},
	{"team lead", "CTO/技术管理"},

	// 产品
	{"product manager", "产品经理"},
	{"pm", "产品经理"},
	{"product owner", "产品经理"},

	{"product designer", "产品设计"},

	{"user researcher", "用户研究"},
	{"ux researcher", "用户研究"},

	// 设计
	{"ui", "UI/UX设计"},
	{"ux", "UI/UX设计"},
	{"interaction design", "UI/UX设计"},
	{"visual designer", "视觉设计"},
	{"graphic designer", "平面设计"},

	// 数据
	{"data analyst", "数据分析"},
	{"business analyst", "商业分析"},
	{"data scientist", "数据科学"},

	// 运营/市场/销售
	{"marketing", "市场营销"},
	{"marketer", "市场营销"},
	{"seo", "市场营销"},
	{"content", "内容创作"},
	{"writer", "内容创作"},
	{"copywriter", "内容创作"},
	{"editor", "内容创作"},

	{"sales", "销售"},
	{"account executive", "销售"},
	{"sdr", "销售"},
	{"bdr", "销售"},

	{"account manager", "客户经理"},
	{"customer success manager", "客户经理"},
	{"csm", "客户经理"},

	{"customer support", "客户服务"},
	{"customer service", "客户服务"},

	{"growth", "增长黑客"},
	{"growth hacker", "增长黑客"},

	{"operations", "运营"},
	{"ops", "运营"}, // 注意与 devops 的先后顺序

	// 职能
	{"hr", "人力资源"},
	{"human resources", "人力资源"},
	{"people ops", "人力资源"},
	{"recruiter", "招聘"},
	{"talent acquisition", "招聘"},

	{"finance", "财务"},
	{"accountant", "财务"},
	{"financial", "财务"},

	{"legal", "法务"},
	{"lawyer", "法务"},
	{"counsel", "法务"},

	{"admin", "行政"},
	{"executive assistant", "行政"},
	{"office manager", "行政"},

	{"ceo", "管理"},
	{"co-founder", "管理"},
	{"vp", "管理"},
	{"director", "管理"},
	{"head of", "管理"},

	// 其他
	{"education", "教育培训"},
	{"teacher", "教育培训"},
	{"tutor", "教育培训"},
	{"curriculum", "教育培训"},

	{"consultant", "咨询"},

	{"investor", "投资"},
	{"investment", "投资"},
	{"venture capital", "投资"},
}

// industryKeywords 按行业列出打分关键词：
// 出现在公司名里计 2 分，出现在描述里计 1 分，多词或 ≥7 字符的关键词额外 +1。
var industryKeywords = []struct {
	industry model.Industry
	keywords []string
}{
	{"人工智能", []string{"ai", "artificial intelligence", "machine learning", "llm", "gpt", "neural", "deep learning"}},
	{"Web3/区块链", []string{"crypto", "blockchain", "web3", "defi", "nft", "bitcoin", "ethereum", "wallet", "exchange", "token"}},
	{"企业服务/SaaS", []string{"saas", "software", "platform", "cloud", "devops", "api", "enterprise", "b2b"}},
	{"金融/Fintech", []string{"fintech", "finance", "banking", "trading", "payment", "invest", "wealth", "insurance", "credit"}},
	{"电子商务", []string{"ecommerce", "e-commerce", "retail", "shop", "marketplace", "consumer", "dtc", "brand"}},
	{"游戏/娱乐", []string{"game", "gaming", "esports", "play", "entertainment", "media", "video", "music", "streaming"}},
	{"大健康/医疗", []string{"health", "medical", "biotech", "pharma", "care", "patient", "doctor", "hospital"}},
	{"教育", []string{"education", "edtech", "learning", "school", "university", "course", "training", "tutor"}},
	{"硬件/物联网", []string{"hardware", "iot", "device", "robotics", "chip", "semiconductor", "manufacturing"}},
	{"互联网/软件", []string{"social", "community", "network", "dating", "chat", "messaging"}},
}

// companyTagRules 为公司打标签，标签之间不互斥，结果取并集。
var companyTagRules = []struct {
	pattern      string
	tag          string
	requiresAI   bool   // 仅当行业判定为人工智能时生效
	excludeIfHas string // 文本包含该子串时跳过
}{
	{`\b(companion|chatbot|character|friend)\b`, "AI+陪伴", true, ""},
	{`\b(health|medical|doctor)\b`, "AI+健康", true, ""},
	{`\b(infrastructure|platform|tool|framework)\b`, "AI基础设施", true, ""},
	{`\b(agent|autonomous)\b`, "AI Agent", true, ""},
	{`\b(remote|distributed|work from home|wfh)\b`, "远程优先", false, ""},
	{`\b(global|worldwide|international)\b`, "全球招聘", false, ""},
	{`\b(startup|early stage|seed|series a)\b`, "初创公司", false, ""},
	{`\b(unicorn|billion)\b`, "独角兽", false, ""},
	{`\b(china|chinese|asia)\b`, "出海", false, "mainland china only"},
}

// 地域关键词表。全部按小写子串匹配；us/uk/eu 这类短词另走单词边界正则。
var (
	globalKeywords = []string{
		"anywhere", "everywhere", "worldwide", "global",
		"remote", "work from anywhere", "wfa", "distributed",
		"不限地点", "全球", "任意地点", "远程", "在家办公",
	}

	mainlandKeywords = []string{
		"china", "中国", "cn", "chinese", "mainland china", "prc",
		"beijing", "shanghai", "shenzhen", "guangzhou", "hangzhou",
		"chengdu", "北京", "上海", "深圳", "广州", "杭州",
		"成都", "重庆", "南京", "武汉", "西安", "苏州",
		"天津", "大连", "青岛", "厦门", "珠海", "佛山",
		"宁波", "无锡", "长沙", "郑州", "济南", "哈尔滨",
		"沈阳", "福州", "石家庄", "合肥", "昆明", "兰州",
	}

	greaterChinaKeywords = []string{
		"hong kong", "hongkong", "hk", "香港",
		"macau", "macao", "澳门",
		"taiwan", "taipei", "台湾", "台北", "高雄",
	}

	// 新加坡按亚太时区处理，与 utc+8 的岗位同属国内可申池。
	apacKeywords = []string{
		"apac", "asia pacific", "east asia", "southeast asia",
		"utc+8", "gmt+8", "cst", "asia/shanghai", "asia/hong_kong",
		"singapore", "新加坡",
		"亚太", "东亚", "东南亚",
	}

	overseasKeywords = []string{
		// 北美
		"usa", "united states", "america", "san francisco", "new york",
		"seattle", "boston", "austin", "los angeles", "silicon valley", "bay area",
		"portland", "denver", "chicago", "atlanta", "miami", "dallas",
		"canada", "toronto", "vancouver", "montreal", "calgary",
		"mexico", "mexico city",
		"hawaii", "honolulu",
		"north america", "美国", "加拿大", "北美",

		// 欧洲
		"europe", "emea", "united kingdom", "england", "london", "britain",
		"germany", "berlin", "munich", "frankfurt", "hamburg", "deutschland",
		"france", "paris", "lyon",
		"spain", "madrid", "barcelona",
		"italy", "rome", "milan",
		"netherlands", "amsterdam", "rotterdam",
		"belgium", "brussels",
		"sweden", "stockholm",
		"norway", "oslo",
		"denmark", "copenhagen",
		"finland", "helsinki",
		"poland", "warsaw",
		"czech", "prague",
		"ireland", "dublin",
		"switzerland", "zurich", "geneva",
		"austria", "vienna",
		"portugal", "lisbon",
		"estonia", "latvia", "lithuania",
		"ukraine", "romania", "bulgaria", "greece", "athens",
		"英国", "德国", "法国", "西班牙", "意大利", "荷兰", "瑞典", "挪威", "芬兰", "波兰", "爱尔兰", "瑞士", "奥地利", "葡萄牙", "欧洲",

		// 大洋洲
		"australia", "sydney", "melbourne", "brisbane", "perth",
		"new zealand", "auckland", "wellington",
		"澳洲", "澳大利亚", "新西兰",

		// 亚洲（海外）
		"japan", "tokyo", "osaka", "kyoto",
		"korea", "south korea", "seoul", "busan",
		"malaysia", "kuala lumpur",
		"indonesia", "jakarta", "bali",
		"thailand", "bangkok",
		"vietnam", "hanoi", "ho chi minh",
		"philippines", "manila",
		"india", "bangalore", "mumbai", "delhi", "hyderabad", "pune",
		"pakistan", "karachi",
		"bangladesh", "dhaka",
		"sri lanka", "colombo",
		"kuwait",
		"日本", "东京", "韩国", "首尔", "马来西亚", "印尼", "泰国", "越南", "菲律宾", "印度",

		// 中东
		"uae", "dubai", "abu dhabi",
		"saudi", "riyadh", "jeddah",
		"qatar", "doha",
		"israel", "tel aviv", "jerusalem",
		"turkey", "istanbul", "ankara",
		"阿联酋", "迪拜", "沙特", "卡塔尔", "以色列", "土耳其",

		// 南美
		"brazil", "sao paulo", "rio de janeiro",
		"argentina", "buenos aires",
		"chile", "santiago",
		"colombia", "bogota",
		"peru", "lima",
		"uruguay", "montevideo",
		"latam", "latin america",
		"巴西", "阿根廷", "智利", "哥伦比亚", "秘鲁", "乌拉圭", "南美",

		// 其他
		"russia", "moscow", "st petersburg",
		"africa", "egypt", "cairo", "south africa", "cape town", "nigeria", "kenya",
		"俄罗斯", "非洲", "埃及", "南非",
	}
)
